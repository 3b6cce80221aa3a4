/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package simlog defines the logging contract LogCache and its
// collaborators depend on, so none of them import log/slog directly.
// Grounded on ericcug-dash2hlsd/internal/logger: a small Logger
// interface backed by a structured slog.JSONHandler, letting the CLI
// swap in a quiet/verbose handler without touching any call site.
package simlog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger is the logging contract used throughout the simulator core.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
	With(args ...any) Logger
}

// SlogLogger adapts log/slog to Logger.
type SlogLogger struct {
	*slog.Logger
}

// New creates a SlogLogger writing JSON-formatted records to w at the
// given level ("debug", "info", "warn", "error"; unrecognized values
// fall back to "info").
func New(level string, w *os.File) Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return &SlogLogger{slog.New(handler)}
}

func (l *SlogLogger) Debugf(format string, v ...any) { l.Debug(fmt.Sprintf(format, v...)) }
func (l *SlogLogger) Infof(format string, v ...any)  { l.Info(fmt.Sprintf(format, v...)) }
func (l *SlogLogger) Warnf(format string, v ...any)  { l.Warn(fmt.Sprintf(format, v...)) }
func (l *SlogLogger) Errorf(format string, v ...any) { l.Error(fmt.Sprintf(format, v...)) }

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l.Logger.With(args...)}
}

// Nop is a Logger that discards everything, used by tests and library
// callers that don't want simulator logging.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}
func (n Nop) With(...any) Logger  { return n }
