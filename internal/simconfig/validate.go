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

import "github.com/launix-de/cachesim/internal/simerrors"

var validCachePolicies = map[string]bool{
	"fifo":             true,
	"fifo-zero":        true,
	"greedy":           true,
	"cost-benefit":     true,
	"kth-cost-benefit": true,
	"lambda":           true,
	"selective-fifo":   true,
	"multiqueue":       true,
}

var validRWPolicies = map[string]bool{"all": true, "write-only": true, "read-only": true}
var validTraceFormats = map[string]bool{"csv": true, "blktrace": true}
var validCompress = map[string]bool{"none": true, "lz4": true, "xz": true}
var validClassifiers = map[string]bool{"": true, "hotcold": true, "multihotcold": true, "sepbit": true}

// Validate checks the fields required of any run, independent of
// where they were set (defaults, config file, or flags).
func Validate(cfg Config) error {
	if cfg.TraceFile == "" {
		return &simerrors.ConfigError{Field: "trace_file", Reason: "must not be empty"}
	}
	if cfg.CacheSizeBytes <= 0 {
		return &simerrors.ConfigError{Field: "cache_size_bytes", Reason: "must be positive"}
	}
	if cfg.BlockSize <= 0 {
		return &simerrors.ConfigError{Field: "block_size", Reason: "must be positive"}
	}
	if cfg.CacheSizeBytes%cfg.BlockSize != 0 {
		return &simerrors.ConfigError{Field: "cache_size_bytes", Reason: "must be a multiple of block_size"}
	}
	if cfg.ColdCapacityBytes <= 0 {
		return &simerrors.ConfigError{Field: "cold_capacity", Reason: "must be positive"}
	}
	if cfg.ValidRatio <= 0 || cfg.ValidRatio >= 1 {
		return &simerrors.ConfigError{Field: "valid_ratio", Reason: "must be in (0, 1)"}
	}
	if !validRWPolicies[cfg.RWPolicy] {
		return &simerrors.ConfigError{Field: "rw_policy", Reason: "must be one of all|write-only|read-only"}
	}
	if !validTraceFormats[cfg.TraceFormat] {
		return &simerrors.ConfigError{Field: "trace_format", Reason: "must be one of csv|blktrace"}
	}
	if !validCachePolicies[cfg.CachePolicy] {
		return &simerrors.ConfigError{Field: "cache_policy", Reason: "unrecognized cache policy variant"}
	}
	if !validClassifiers[cfg.Classifier] {
		return &simerrors.ConfigError{Field: "classifier", Reason: "must be one of (empty)|hotcold|multihotcold|sepbit"}
	}
	if !validCompress[cfg.ColdSnapshotCompress] {
		return &simerrors.ConfigError{Field: "cold_snapshot_compress", Reason: "must be one of none|lz4|xz"}
	}
	if cfg.BypassBlocksThreshold < 0 {
		return &simerrors.ConfigError{Field: "bypass_blocks_threshold", Reason: "must not be negative"}
	}
	return nil
}
