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

// Package simconfig parses the driver's CLI surface and optional
// config-file overlay. Flags are defined with github.com/spf13/pflag,
// grounded on the example pack's tk/internal/cli command flag sets;
// the optional --config overlay follows the pack's config.go
// global-then-project layering (here collapsed to a single file,
// applied before flags so flags always win).
package simconfig

// Config holds every setting the driver needs to build a run. Fields
// mirror the CLI surface in SPEC_FULL.md §6 plus spec.md §6.
type Config struct {
	TraceFile      string `json:"trace_file,omitempty"`
	CacheSizeBytes int64  `json:"cache_size_bytes,omitempty"`

	BlockSize   int64  `json:"block_size,omitempty"`
	RWPolicy    string `json:"rw_policy,omitempty"`
	TraceFormat string `json:"trace_format,omitempty"`
	CachePolicy string `json:"cache_policy,omitempty"`

	ColdCapacityBytes int64   `json:"cold_capacity,omitempty"`
	ValidRatio        float64 `json:"valid_ratio,omitempty"`

	// Classifier selects the optional StreamClassifier: "", "hotcold",
	// "multihotcold", or "sepbit". Empty (the default) leaves writes
	// routed purely by device/stream id, matching pre-classifier
	// behavior.
	Classifier string `json:"classifier,omitempty"`

	WAFLogFile  string `json:"waf_log_file,omitempty"`
	StatLogFile string `json:"stat_log_file,omitempty"`
	CacheTrace  string `json:"cache_trace,omitempty"`
	ColdTrace   string `json:"cold_trace,omitempty"`

	LogFormat string `json:"log_format,omitempty"`
	LogLevel  string `json:"log_level,omitempty"`

	ColdSnapshotURI      string `json:"cold_snapshot_uri,omitempty"`
	ColdSnapshotCompress string `json:"cold_snapshot_compress,omitempty"`

	MySQLDSN     string `json:"mysql_dsn,omitempty"`
	MySQLTable   string `json:"mysql_table,omitempty"`
	DashboardAddr string `json:"dashboard_addr,omitempty"`

	Interactive   bool   `json:"interactive,omitempty"`
	Follow        bool   `json:"follow,omitempty"`
	FollowTimeout string `json:"follow_timeout,omitempty"`

	// BypassBlocksThreshold gates the "large batch goes straight to the
	// cold tier" fast path. Zero disables it. See spec.md §9: the source
	// wires this constant to 128 but leaves the call site commented out,
	// so it defaults off here.
	BypassBlocksThreshold int `json:"bypass_blocks_threshold,omitempty"`
}

// Default returns the baseline configuration applied before any config
// file or CLI flag is considered.
func Default() Config {
	return Config{
		BlockSize:             4096,
		RWPolicy:              "all",
		TraceFormat:           "csv",
		CachePolicy:           "fifo",
		ValidRatio:            0.5,
		LogFormat:             "text",
		LogLevel:              "info",
		ColdSnapshotCompress:  "none",
		BypassBlocksThreshold: 0,
	}
}

func mergeOverlay(base, overlay Config) Config {
	if overlay.TraceFile != "" {
		base.TraceFile = overlay.TraceFile
	}
	if overlay.CacheSizeBytes != 0 {
		base.CacheSizeBytes = overlay.CacheSizeBytes
	}
	if overlay.BlockSize != 0 {
		base.BlockSize = overlay.BlockSize
	}
	if overlay.RWPolicy != "" {
		base.RWPolicy = overlay.RWPolicy
	}
	if overlay.TraceFormat != "" {
		base.TraceFormat = overlay.TraceFormat
	}
	if overlay.CachePolicy != "" {
		base.CachePolicy = overlay.CachePolicy
	}
	if overlay.ColdCapacityBytes != 0 {
		base.ColdCapacityBytes = overlay.ColdCapacityBytes
	}
	if overlay.ValidRatio != 0 {
		base.ValidRatio = overlay.ValidRatio
	}
	if overlay.Classifier != "" {
		base.Classifier = overlay.Classifier
	}
	if overlay.WAFLogFile != "" {
		base.WAFLogFile = overlay.WAFLogFile
	}
	if overlay.StatLogFile != "" {
		base.StatLogFile = overlay.StatLogFile
	}
	if overlay.CacheTrace != "" {
		base.CacheTrace = overlay.CacheTrace
	}
	if overlay.ColdTrace != "" {
		base.ColdTrace = overlay.ColdTrace
	}
	if overlay.LogFormat != "" {
		base.LogFormat = overlay.LogFormat
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if overlay.ColdSnapshotURI != "" {
		base.ColdSnapshotURI = overlay.ColdSnapshotURI
	}
	if overlay.ColdSnapshotCompress != "" {
		base.ColdSnapshotCompress = overlay.ColdSnapshotCompress
	}
	if overlay.MySQLDSN != "" {
		base.MySQLDSN = overlay.MySQLDSN
	}
	if overlay.MySQLTable != "" {
		base.MySQLTable = overlay.MySQLTable
	}
	if overlay.DashboardAddr != "" {
		base.DashboardAddr = overlay.DashboardAddr
	}
	if overlay.Interactive {
		base.Interactive = true
	}
	if overlay.Follow {
		base.Follow = true
	}
	if overlay.FollowTimeout != "" {
		base.FollowTimeout = overlay.FollowTimeout
	}
	if overlay.BypassBlocksThreshold != 0 {
		base.BypassBlocksThreshold = overlay.BypassBlocksThreshold
	}
	return base
}
