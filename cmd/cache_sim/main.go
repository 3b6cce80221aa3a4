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

// Command cache_sim replays a block I/O trace through the log-structured
// cache simulator, reporting write amplification and periodic cache
// statistics.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dc0d/onexit"

	"github.com/launix-de/cachesim/internal/coldpersist"
	"github.com/launix-de/cachesim/internal/logcache"
	"github.com/launix-de/cachesim/internal/replserver"
	"github.com/launix-de/cachesim/internal/runid"
	"github.com/launix-de/cachesim/internal/simconfig"
	"github.com/launix-de/cachesim/internal/simlog"
	"github.com/launix-de/cachesim/internal/statsink"
	"github.com/launix-de/cachesim/internal/trace"
)

func main() {
	err := run(os.Args[1:])
	code := 0
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	// onexit.Exit runs every registered cleanup (closing the trace
	// reader and log files, saving a cold-tier snapshot, shutting down
	// statsink subscribers) before actually terminating the process.
	onexit.Exit(code)
}

func run(args []string) error {
	cfg, err := simconfig.ParseArgs(args)
	if err != nil {
		return err
	}

	log := simlog.New(cfg.LogLevel, os.Stderr)
	id := runid.New()
	log.Infof("starting run %s trace=%s cache_size=%s", id, cfg.TraceFile, simconfig.HumanBytes(cfg.CacheSizeBytes))

	followTimeout, err := parseFollowTimeout(cfg.FollowTimeout)
	if err != nil {
		return err
	}

	reader, err := trace.Open(cfg.TraceFile, cfg.TraceFormat, trace.ParseRWPolicy(cfg.RWPolicy), cfg.Follow, followTimeout)
	if err != nil {
		return err
	}
	onexit.Register(func() { reader.Close() })

	wafOut, wafClose, err := openLogTarget(cfg.WAFLogFile, id.String())
	if err != nil {
		return err
	}
	onexit.Register(func() { wafClose() })

	statOut, statClose, err := openLogTarget(cfg.StatLogFile, id.String())
	if err != nil {
		return err
	}
	onexit.Register(func() { statClose() })

	lcCfg := logcache.DefaultConfig()
	lcCfg.BlockSize = cfg.BlockSize
	lcCfg.CacheSizeBytes = cfg.CacheSizeBytes
	lcCfg.CachePolicy = cfg.CachePolicy
	lcCfg.Classifier = cfg.Classifier
	lcCfg.InitialValidRatio = cfg.ValidRatio
	lcCfg.ColdCapacityBytes = cfg.ColdCapacityBytes
	lcCfg.BypassBlocksThreshold = cfg.BypassBlocksThreshold

	cache, err := logcache.New(lcCfg, log, fileHistSink{w: statOut})
	if err != nil {
		return err
	}
	onexit.Register(func() { cache.Close() })

	if cfg.ColdSnapshotURI != "" {
		if err := coldpersist.Load(cache.ColdFTL(), cfg.ColdSnapshotURI, cfg.ColdSnapshotCompress); err != nil {
			log.Warnf("cold-tier snapshot load skipped: %v", err)
		}
		onexit.Register(func() {
			if err := coldpersist.Save(cache.ColdFTL(), cfg.ColdSnapshotURI, cfg.ColdSnapshotCompress); err != nil {
				log.Errorf("cold-tier snapshot save failed: %v", err)
			}
		})
	}

	subs, err := buildSinks(cfg, log)
	if err != nil {
		return err
	}
	fanout := statsink.NewFanout(log, subs...)
	onexit.Register(func() { fanout.Close() })

	d := newDriver(reader, cache, log, fanout, id.String(), wafOut, statOut)

	if cfg.Interactive {
		historyFile := filepath.Join(os.TempDir(), "cache_sim_history")
		return replserver.Repl(d, historyFile, os.Stdout)
	}
	return d.Run()
}

func parseFollowTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(s)
}

// openLogTarget opens path for appending the run_id header line
// (SPEC_FULL.md §4.17), or falls back to os.Stdout when path is empty
// so the WAF/stats lines are never silently dropped.
func openLogTarget(path, runID string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	fmt.Fprintf(f, "# run_id: %s\n", runID)
	return f, func() { f.Close() }, nil
}

// buildSinks constructs the optional MySQL and dashboard statsink
// subscribers named by cfg, leaving the slice empty when neither flag
// is set.
func buildSinks(cfg simconfig.Config, log simlog.Logger) ([]statsink.Subscriber, error) {
	var subs []statsink.Subscriber
	if cfg.MySQLDSN != "" {
		sink, err := statsink.NewMySQLSink(cfg.MySQLDSN, cfg.MySQLTable)
		if err != nil {
			return nil, fmt.Errorf("mysql sink: %w", err)
		}
		subs = append(subs, sink)
	}
	if cfg.DashboardAddr != "" {
		subs = append(subs, statsink.NewDashboardServer(cfg.DashboardAddr, log))
	}
	return subs, nil
}

// fileHistSink sends every histogram's dump to the same stats log
// writer, trailing the periodic milestone lines — spec.md §4.7 names
// only "a file sink", not a dedicated file.
type fileHistSink struct {
	w io.Writer
}

func (s fileHistSink) Writer(string) io.Writer { return s.w }
