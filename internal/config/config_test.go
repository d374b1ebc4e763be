package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddr != ":8000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.MaxConcurrentJobs != 2 || cfg.MaxQueueSize != 50 {
		t.Fatalf("queue defaults = %d/%d", cfg.MaxConcurrentJobs, cfg.MaxQueueSize)
	}
	if cfg.ArchiveTTL != 24*time.Hour {
		t.Fatalf("ArchiveTTL = %v", cfg.ArchiveTTL)
	}
	if cfg.DemucsBin != "demucs" || cfg.WhisperBin != "whisper" || cfg.Device != "cpu" {
		t.Fatalf("tool defaults = %q/%q/%q", cfg.DemucsBin, cfg.WhisperBin, cfg.Device)
	}
	if cfg.RedisAddr != "" || cfg.PostgresDSN != "" {
		t.Fatalf("external services should default off, got %q/%q", cfg.RedisAddr, cfg.PostgresDSN)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MUXMINUS_HTTP_ADDR", ":9999")
	t.Setenv("MUXMINUS_MAX_CONCURRENT_JOBS", "4")
	t.Setenv("MUXMINUS_MAX_QUEUE_SIZE", "100")
	t.Setenv("MUXMINUS_RATE_LIMIT", "2.5")
	t.Setenv("MUXMINUS_REDIS_ADDR", "localhost:6379")
	t.Setenv("MUXMINUS_DEVICE", "cuda")

	cfg := Load()

	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.MaxConcurrentJobs != 4 || cfg.MaxQueueSize != 100 {
		t.Fatalf("queue overrides = %d/%d", cfg.MaxConcurrentJobs, cfg.MaxQueueSize)
	}
	if cfg.RateLimit != 2.5 {
		t.Fatalf("RateLimit = %v", cfg.RateLimit)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.Device != "cuda" {
		t.Fatalf("overrides = %q/%q", cfg.RedisAddr, cfg.Device)
	}
}

func TestLoadMalformedIntFallsBack(t *testing.T) {
	t.Setenv("MUXMINUS_MAX_CONCURRENT_JOBS", "lots")

	if got := Load().MaxConcurrentJobs; got != 2 {
		t.Fatalf("MaxConcurrentJobs = %d, want default 2", got)
	}
}
