// Package config loads service settings from MUXMINUS_-prefixed
// environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr   string
	UploadsDir string
	OutputsDir string

	MaxConcurrentJobs int
	MaxQueueSize      int

	APIKey    string // empty disables the API key check
	RateLimit float64
	RateBurst int

	// Optional external services; empty values disable them.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ArchiveTTL    time.Duration
	PostgresDSN   string

	DemucsBin    string
	WhisperBin   string
	WhisperModel string
	Device       string
	MP3Bitrate   int
}

func Load() Config {
	return Config{
		HTTPAddr:   envOr("MUXMINUS_HTTP_ADDR", ":8000"),
		UploadsDir: envOr("MUXMINUS_UPLOADS_DIR", "/data/uploads"),
		OutputsDir: envOr("MUXMINUS_OUTPUTS_DIR", "/data/outputs"),

		MaxConcurrentJobs: envIntOr("MUXMINUS_MAX_CONCURRENT_JOBS", 2),
		MaxQueueSize:      envIntOr("MUXMINUS_MAX_QUEUE_SIZE", 50),

		APIKey:    os.Getenv("MUXMINUS_API_KEY"),
		RateLimit: envFloatOr("MUXMINUS_RATE_LIMIT", 5),
		RateBurst: envIntOr("MUXMINUS_RATE_BURST", 10),

		RedisAddr:     os.Getenv("MUXMINUS_REDIS_ADDR"),
		RedisPassword: os.Getenv("MUXMINUS_REDIS_PASSWORD"),
		RedisDB:       envIntOr("MUXMINUS_REDIS_DB", 0),
		ArchiveTTL:    time.Duration(envIntOr("MUXMINUS_ARCHIVE_TTL_HOURS", 24)) * time.Hour,
		PostgresDSN:   os.Getenv("MUXMINUS_POSTGRES_DSN"),

		DemucsBin:    envOr("MUXMINUS_DEMUCS_BIN", "demucs"),
		WhisperBin:   envOr("MUXMINUS_WHISPER_BIN", "whisper"),
		WhisperModel: envOr("MUXMINUS_WHISPER_MODEL", "base"),
		Device:       envOr("MUXMINUS_DEVICE", "cpu"),
		MP3Bitrate:   envIntOr("MUXMINUS_MP3_BITRATE", 320),
	}
}

func envOr(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envFloatOr(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
