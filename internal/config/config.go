package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrChallah/cxhunt/internal/constants"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	UpstreamTemplate string
	ServerPort       string
	LogLevel         string
	CacheTTL         time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		UpstreamTemplate: getEnv("UPSTREAM_TEMPLATE", ""),
		ServerPort:       getEnv("SERVER_PORT", "3000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CacheTTL:         constants.DefaultCacheTTL,
	}

	if cfg.UpstreamTemplate == "" {
		return nil, fmt.Errorf("UPSTREAM_TEMPLATE is required")
	}
	if !strings.Contains(cfg.UpstreamTemplate, constants.SlugPlaceholder) {
		return nil, fmt.Errorf("UPSTREAM_TEMPLATE must contain the %s placeholder", constants.SlugPlaceholder)
	}

	if raw := getEnv("CACHE_MS", ""); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("CACHE_MS must be a non-negative integer, got %q", raw)
		}
		cfg.CacheTTL = time.Duration(ms) * time.Millisecond
	}

	logger.Info().
		Str("upstream_template", cfg.UpstreamTemplate).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
