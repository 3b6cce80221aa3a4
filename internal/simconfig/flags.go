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

package simconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/docker/go-units"
	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/launix-de/cachesim/internal/simerrors"
)

// ParseArgs parses the driver's CLI surface: two required positionals
// (trace_file, cache_size_bytes) followed by the flag set in
// SPEC_FULL.md §6. An optional --config file is read and merged in
// before flags are applied, matching the pack's global-then-override
// layering so CLI flags always win over the file.
func ParseArgs(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("cache_sim", flag.ContinueOnError)

	configPath := fs.String("config", "", "HuJSON config file overlay")
	blockSize := fs.String("block_size", "4096", "cache block size in bytes (accepts human suffixes)")
	rwPolicy := fs.String("rw_policy", "all", "all|write-only|read-only")
	traceFormat := fs.String("trace_format", "csv", "csv|blktrace")
	cachePolicy := fs.String("cache_policy", "fifo", "victim selection policy variant")
	classifierName := fs.String("classifier", "", "optional stream classifier: hotcold|multihotcold|sepbit")
	coldCapacity := fs.String("cold_capacity", "0", "cold tier capacity in bytes (required > 0)")
	validRatio := fs.Float64("valid_ratio", 0.5, "initial target valid ratio")
	wafLogFile := fs.String("waf_log_file", "", "write amplification log path")
	statLogFile := fs.String("stat_log_file", "", "periodic stats log path")
	cacheTrace := fs.String("cache_trace", "", "cache-tier trace output path")
	coldTrace := fs.String("cold_trace", "", "cold-tier trace output path")

	logFormat := fs.String("log_format", "text", "text|json")
	logLevel := fs.String("log_level", "info", "debug|info|warn|error")

	coldSnapshotURI := fs.String("cold_snapshot_uri", "", "file://, s3://, or ceph:// snapshot location")
	coldSnapshotCompress := fs.String("cold_snapshot_compress", "none", "none|lz4|xz")

	mysqlDSN := fs.String("mysql_dsn", "", "MySQL stats sink DSN")
	mysqlTable := fs.String("mysql_table", "", "MySQL stats sink table name")
	dashboardAddr := fs.String("dashboard_addr", "", "live dashboard listen address")

	interactive := fs.Bool("interactive", false, "enable the interactive step REPL")
	follow := fs.Bool("follow", false, "follow the trace file for new rows as they're appended")
	followTimeout := fs.String("follow_timeout", "", "max idle time to wait in follow mode (e.g. 30s)")

	bypassThreshold := fs.Int("bypass_blocks_threshold", 0, "batch size above which writes bypass the cache tier (0 disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return Config{}, &simerrors.ConfigError{Field: "trace_file, cache_size_bytes", Reason: "both positional arguments are required"}
	}
	cfg.TraceFile = rest[0]

	cacheSize, err := units.RAMInBytes(rest[1])
	if err != nil {
		return Config{}, &simerrors.ConfigError{Field: "cache_size_bytes", Reason: err.Error()}
	}
	cfg.CacheSizeBytes = cacheSize

	if *configPath != "" {
		overlay, err := loadOverlay(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = mergeOverlay(cfg, overlay)
	}

	// Only flags the caller actually typed override the file overlay;
	// an unset flag must not clobber the overlay's value with pflag's
	// zero/default, mirroring the pack's hasTicketDirOverride guard.
	if fs.Changed("block_size") {
		bs, err := units.RAMInBytes(*blockSize)
		if err != nil {
			return Config{}, &simerrors.ConfigError{Field: "block_size", Reason: err.Error()}
		}
		cfg.BlockSize = bs
	} else if cfg.BlockSize == 0 {
		bs, err := units.RAMInBytes(*blockSize)
		if err != nil {
			return Config{}, &simerrors.ConfigError{Field: "block_size", Reason: err.Error()}
		}
		cfg.BlockSize = bs
	}

	if fs.Changed("cold_capacity") || cfg.ColdCapacityBytes == 0 {
		cc, err := units.RAMInBytes(*coldCapacity)
		if err != nil {
			return Config{}, &simerrors.ConfigError{Field: "cold_capacity", Reason: err.Error()}
		}
		if cc != 0 {
			cfg.ColdCapacityBytes = cc
		}
	}

	if fs.Changed("rw_policy") {
		cfg.RWPolicy = *rwPolicy
	}
	if fs.Changed("trace_format") {
		cfg.TraceFormat = *traceFormat
	}
	if fs.Changed("cache_policy") {
		cfg.CachePolicy = *cachePolicy
	}
	if fs.Changed("classifier") {
		cfg.Classifier = *classifierName
	}
	if fs.Changed("valid_ratio") {
		cfg.ValidRatio = *validRatio
	}
	if fs.Changed("waf_log_file") {
		cfg.WAFLogFile = *wafLogFile
	}
	if fs.Changed("stat_log_file") {
		cfg.StatLogFile = *statLogFile
	}
	if fs.Changed("cache_trace") {
		cfg.CacheTrace = *cacheTrace
	}
	if fs.Changed("cold_trace") {
		cfg.ColdTrace = *coldTrace
	}
	if fs.Changed("log_format") {
		cfg.LogFormat = *logFormat
	}
	if fs.Changed("log_level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("cold_snapshot_uri") {
		cfg.ColdSnapshotURI = *coldSnapshotURI
	}
	if fs.Changed("cold_snapshot_compress") {
		cfg.ColdSnapshotCompress = *coldSnapshotCompress
	}
	if fs.Changed("mysql_dsn") {
		cfg.MySQLDSN = *mysqlDSN
	}
	if fs.Changed("mysql_table") {
		cfg.MySQLTable = *mysqlTable
	}
	if fs.Changed("dashboard_addr") {
		cfg.DashboardAddr = *dashboardAddr
	}
	if *interactive {
		cfg.Interactive = true
	}
	if *follow {
		cfg.Follow = true
	}
	if fs.Changed("follow_timeout") {
		cfg.FollowTimeout = *followTimeout
	}
	if fs.Changed("bypass_blocks_threshold") {
		cfg.BypassBlocksThreshold = *bypassThreshold
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadOverlay reads a HuJSON (JSON-with-comments) config file,
// standardizes it to plain JSON, and unmarshals it into a Config.
func loadOverlay(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return Config{}, &simerrors.ConfigError{Field: "config", Reason: fmt.Sprintf("reading %s: %v", path, err)}
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, &simerrors.ConfigError{Field: "config", Reason: fmt.Sprintf("invalid JSONC in %s: %v", path, err)}
	}
	var overlay Config
	if err := json.Unmarshal(standardized, &overlay); err != nil {
		return Config{}, &simerrors.ConfigError{Field: "config", Reason: fmt.Sprintf("invalid JSON in %s: %v", path, err)}
	}
	return overlay, nil
}

// HumanBytes renders a byte count the way go-units does for --help
// output and startup log lines.
func HumanBytes(n int64) string {
	return units.HumanSize(float64(n))
}
