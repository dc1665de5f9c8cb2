package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds everything the pipeline and its HTTP surface consume.
type AppConfig struct {
	// FTPHost is the archive host, host[:port].
	FTPHost string

	// FetchTimeout bounds each FTP dial and control exchange.
	FetchTimeout time.Duration
	// FetchRetries is the retry budget per archive fetch.
	FetchRetries int

	// CacheTTL is how long a rendered artifact stays fresh.
	CacheTTL time.Duration
	// CacheSweepInterval drives the background eviction job; 0 disables it.
	CacheSweepInterval time.Duration

	// Rendering knobs.
	RenderDPI     int
	RenderStretch float64
	RenderMinC    float64
	RenderMaxC    float64

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := &AppConfig{}

	cfg.FTPHost = getenvDefault("FTP_HOST", "gms.cr.chiba-u.ac.jp")

	timeout, err := getenvDuration("FETCH_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = timeout

	cfg.FetchRetries = getenvInt("FETCH_RETRIES", 3)
	if cfg.FetchRetries < 1 {
		return nil, fmt.Errorf("FETCH_RETRIES must be at least 1, got %d", cfg.FetchRetries)
	}

	ttl, err := getenvDuration("CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = ttl

	sweep, err := getenvDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.CacheSweepInterval = sweep

	cfg.RenderDPI = getenvInt("RENDER_DPI", 300)
	cfg.RenderStretch = getenvFloat("RENDER_STRETCH", 1.35)
	cfg.RenderMinC = getenvFloat("RENDER_MIN_C", -100)
	cfg.RenderMaxC = getenvFloat("RENDER_MAX_C", 40)
	if cfg.RenderMinC >= cfg.RenderMaxC {
		return nil, fmt.Errorf("RENDER_MIN_C (%v) must be below RENDER_MAX_C (%v)", cfg.RenderMinC, cfg.RenderMaxC)
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
