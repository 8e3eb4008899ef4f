package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"relay-gateway/logging"
	"relay-gateway/middleware/ratelimit/infra"
	"relay-gateway/relay"
)

type config struct {
	port int

	serviceBURL string
	serviceAURL string

	relayTimeout  time.Duration
	maxBodyBytes  int64
	outboundRPS   float64
	outboundBurst int

	rateEnabled        bool
	rateLimit          int
	rateWindow         time.Duration
	trustXFF           bool
	addHeaders         bool
	concurrencyMax     int
	concurrencyTimeout time.Duration

	logLevel     string
	logFile      string
	logColor     bool
	logMaxSizeMB int

	rateStatsEnabled       bool
	rateStatsBackend       string
	rateStatsRedisAddr     string
	rateStatsRedisPassword string
	rateStatsRedisDB       int
	rateStatsPrefix        string
	rateStatsTTL           time.Duration
	rateStatsBucket        string
	rateStatsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.port = getenvIntDefault("PORT", 3000)

	// nomes legados das variáveis (n8n = B, Salesforce = A)
	cfg.serviceBURL = firstEnv("ENDPOINT_N8N_API", "SERVICE_B_URL")
	cfg.serviceAURL = firstEnv("ENDPOINT_SF_API", "SERVICE_A_URL")

	cfg.relayTimeout = getenvDurationDefault("RELAY_TIMEOUT", relay.DefaultTimeout)
	cfg.maxBodyBytes = int64(getenvIntDefault("RELAY_MAX_BODY_BYTES", relay.DefaultMaxBodyBytes))
	cfg.outboundRPS = getenvFloatDefault("RELAY_OUTBOUND_RPS", 0)
	cfg.outboundBurst = getenvIntDefault("RELAY_OUTBOUND_BURST", 1)

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateLimit = getenvIntDefault("RATE_LIMIT", infra.DefaultLimit)
	cfg.rateWindow = getenvDurationDefault("RATE_WINDOW", infra.DefaultWindow)
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", true)
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.logLevel = getenvDefault("LOG_LEVEL", logging.DefaultLevel)
	cfg.logFile = getenvDefault("LOG_FILE", logging.DefaultFile)
	cfg.logColor = getenvBoolDefault("LOG_COLOR", true)
	cfg.logMaxSizeMB = getenvIntDefault("LOG_MAX_SIZE_MB", 0)

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsBackend = strings.ToLower(getenvDefault("RATE_STATS_BACKEND", "memory"))
	cfg.rateStatsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.rateStatsRedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.rateStatsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "relay:ratelimit")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	if err := validateURL("ENDPOINT_N8N_API", cfg.serviceBURL); err != nil {
		return config{}, err
	}
	if err := validateURL("ENDPOINT_SF_API", cfg.serviceAURL); err != nil {
		return config{}, err
	}
	if cfg.port <= 0 || cfg.port > 65535 {
		return config{}, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.port)
	}
	if cfg.relayTimeout <= 0 {
		return config{}, errors.New("RELAY_TIMEOUT must be > 0")
	}
	if cfg.rateLimit <= 0 {
		return config{}, errors.New("RATE_LIMIT must be > 0")
	}
	if cfg.rateWindow <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.rateStatsEnabled {
		switch cfg.rateStatsBackend {
		case "memory":
		case "redis":
			if strings.TrimSpace(cfg.rateStatsRedisAddr) == "" {
				return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_BACKEND=redis")
			}
		default:
			return config{}, fmt.Errorf("RATE_STATS_BACKEND must be memory or redis, got %q", cfg.rateStatsBackend)
		}
	}
	return cfg, nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
