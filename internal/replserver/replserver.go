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

// Package replserver is a debugging aid over an already-running
// simulation, not a second implementation of it. Grounded on
// scm/prompt.go's Repl: the same chzyer/readline loop shape
// (NewEx/CaptureExitSignal/Readline, interrupt and EOF handling, a
// per-iteration panic recovery), repointed from evaluating Scheme
// expressions to stepping an Engine by some number of batch inserts.
package replserver

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/launix-de/cachesim/internal/statsink"
)

const (
	newPrompt  = "\033[32msim>\033[0m "
	contPrompt = "\033[32m...\033[0m "
)

// Engine is the slice of the simulator driver the REPL steps and
// inspects. cmd/cache_sim's driver satisfies this without the REPL
// needing to import logcache's internals.
type Engine interface {
	// Step advances the trace replay by up to n batch inserts,
	// returning how many were actually processed (fewer than n at
	// end of trace) and any non-EOF error.
	Step(n int) (int, error)
	// Stats returns the RunStats as they stand right now.
	Stats() statsink.RunStats
	// DumpSegment renders segment id's slot table as text, or an
	// error if id is out of range.
	DumpSegment(id int) (string, error)
}

// Repl runs an interactive session against eng until the user exits
// (Ctrl-D) or interrupts at an empty prompt, reading commands through
// readline from the terminal and writing command output to out.
func Repl(eng Engine, historyFile string, out io.Writer) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newPrompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("replserver: starting readline: %w", err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			oldline = ""
			l.SetPrompt(newPrompt)
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("replserver: reading line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		oldline = ""
		l.SetPrompt(newPrompt)

		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintf(out, "panic: %v\n", r)
				}
			}()
			runCommand(eng, line, out)
		}()
	}
	return nil
}

// runCommand dispatches one REPL command. Unrecognized commands print
// a usage hint rather than erroring, since a typo shouldn't end the
// session.
func runCommand(eng Engine, line string, out io.Writer) {
	fields := strings.Fields(line)
	cmd := fields[0]

	switch cmd {
	case "step":
		n := 1
		if len(fields) > 1 {
			parsed, err := strconv.Atoi(fields[1])
			if err != nil || parsed <= 0 {
				fmt.Fprintf(out, "step: invalid count %q\n", fields[1])
				return
			}
			n = parsed
		}
		processed, err := eng.Step(n)
		if err != nil {
			fmt.Fprintf(out, "step: %v\n", err)
		}
		fmt.Fprintf(out, "stepped %d/%d batch inserts\n", processed, n)

	case "stat":
		printStats(eng.Stats(), out)

	case "segment":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: segment <id>")
			return
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintf(out, "segment: invalid id %q\n", fields[1])
			return
		}
		dump, err := eng.DumpSegment(id)
		if err != nil {
			fmt.Fprintf(out, "segment: %v\n", err)
			return
		}
		fmt.Fprintln(out, dump)

	case "help":
		fmt.Fprintln(out, "commands: step [n], stat, segment <id>, help")

	default:
		fmt.Fprintf(out, "unknown command %q (try: help)\n", cmd)
	}
}

func printStats(s statsink.RunStats, out io.Writer) {
	fmt.Fprintf(out, "run_id=%s\n", s.RunID)
	fmt.Fprintf(out, "  invalidate_blocks=%d compacted_blocks=%d global_valid_blocks=%d\n",
		s.InvalidateBlocks, s.CompactedBlocks, s.GlobalValidBlocks)
	fmt.Fprintf(out, "  write_size_to_cache=%d evicted_blocks=%d write_hit_size=%d\n",
		s.WriteSizeToCache, s.EvictedBlocks, s.WriteHitSize)
	fmt.Fprintf(out, "  total_cache_size=%d reinsert_blocks=%d read_blocks_in_partial_write=%d\n",
		s.TotalCacheSize, s.ReinsertBlocks, s.ReadBlocksInPartialWrite)
	fmt.Fprintf(out, "  write_amplification=%.4f\n", s.WriteAmplification)
}
