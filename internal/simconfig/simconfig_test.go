package simconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgsAppliesDefaultsAndPositionals(t *testing.T) {
	cfg, err := ParseArgs([]string{"trace.csv", "16Mi", "--cold_capacity", "4Mi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TraceFile != "trace.csv" {
		t.Fatalf("unexpected trace file: %q", cfg.TraceFile)
	}
	if cfg.CacheSizeBytes != 16*1024*1024 {
		t.Fatalf("unexpected cache size: %d", cfg.CacheSizeBytes)
	}
	if cfg.BlockSize != 4096 {
		t.Fatalf("unexpected default block size: %d", cfg.BlockSize)
	}
	if cfg.CachePolicy != "fifo" {
		t.Fatalf("unexpected default cache policy: %q", cfg.CachePolicy)
	}
}

func TestParseArgsMissingPositionalIsConfigError(t *testing.T) {
	_, err := ParseArgs([]string{"trace.csv"})
	if err == nil {
		t.Fatal("expected a config error for missing cache_size_bytes")
	}
}

func TestParseArgsRejectsUnalignedCacheSize(t *testing.T) {
	_, err := ParseArgs([]string{"trace.csv", "100", "--cold_capacity", "4Mi", "--block_size", "4096"})
	if err == nil {
		t.Fatal("expected a config error for a cache size not divisible by block size")
	}
}

func TestParseArgsRejectsMissingColdCapacity(t *testing.T) {
	_, err := ParseArgs([]string{"trace.csv", "4096"})
	if err == nil {
		t.Fatal("expected a config error for missing cold_capacity")
	}
}

func TestParseArgsConfigFileOverlayAppliesBeforeFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.json")
	body := `{
		// this overlay sets a non-default policy
		"cache_policy": "greedy",
		"valid_ratio": 0.25,
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing overlay: %v", err)
	}

	cfg, err := ParseArgs([]string{"trace.csv", "4096", "--cold_capacity", "4Mi", "--config", path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CachePolicy != "greedy" {
		t.Fatalf("expected overlay's cache_policy to apply, got %q", cfg.CachePolicy)
	}
	if cfg.ValidRatio != 0.25 {
		t.Fatalf("expected overlay's valid_ratio to apply, got %v", cfg.ValidRatio)
	}
}

func TestParseArgsExplicitFlagWinsOverOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.json")
	if err := os.WriteFile(path, []byte(`{"cache_policy": "greedy"}`), 0o600); err != nil {
		t.Fatalf("writing overlay: %v", err)
	}

	cfg, err := ParseArgs([]string{
		"trace.csv", "4096", "--cold_capacity", "4Mi",
		"--config", path, "--cache_policy", "lambda",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CachePolicy != "lambda" {
		t.Fatalf("expected explicit flag to win over overlay, got %q", cfg.CachePolicy)
	}
}

func TestParseArgsHumanSizesAndHumanBytes(t *testing.T) {
	cfg, err := ParseArgs([]string{"trace.csv", "32Mi", "--cold_capacity", "1Gi", "--block_size", "4Ki"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CacheSizeBytes != 32*1024*1024 {
		t.Fatalf("unexpected cache size: %d", cfg.CacheSizeBytes)
	}
	if cfg.BlockSize != 4*1024 {
		t.Fatalf("unexpected block size: %d", cfg.BlockSize)
	}
	if cfg.ColdCapacityBytes != 1024*1024*1024 {
		t.Fatalf("unexpected cold capacity: %d", cfg.ColdCapacityBytes)
	}
	s := HumanBytes(cfg.CacheSizeBytes)
	if s == "" {
		t.Fatal("expected a non-empty human-readable size")
	}
}
