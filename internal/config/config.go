package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                  int    `env:"PORT" envDefault:"8080"`
	RedisURL              string `env:"REDIS_URL,required"`
	DatabaseURL           string `env:"DATABASE_URL" envDefault:""`
	TranslatorURL         string `env:"TRANSLATOR_URL" envDefault:""`
	TranslatorAPIKey      string `env:"TRANSLATOR_API_KEY" envDefault:""`
	TokenTTLSeconds       int    `env:"TOKEN_TTL_SECONDS" envDefault:"60"`
	ListenTokenTTLSeconds int    `env:"LISTEN_TOKEN_TTL_SECONDS" envDefault:"600"`
	RoomTTLSeconds        int    `env:"ROOM_TTL_SECONDS" envDefault:"3600"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

func (c *Config) ListenTokenTTL() time.Duration {
	return time.Duration(c.ListenTokenTTLSeconds) * time.Second
}

func (c *Config) RoomTTL() time.Duration {
	return time.Duration(c.RoomTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.TokenTTLSeconds <= 0 {
		return fmt.Errorf("TOKEN_TTL_SECONDS must be positive")
	}
	if c.ListenTokenTTLSeconds < c.TokenTTLSeconds {
		return fmt.Errorf("LISTEN_TOKEN_TTL_SECONDS must be at least TOKEN_TTL_SECONDS")
	}
	if c.RoomTTLSeconds <= 0 {
		return fmt.Errorf("ROOM_TTL_SECONDS must be positive")
	}

	if isProduction {
		if c.TranslatorURL == "" {
			log.Warn().Msg("TRANSLATOR_URL is empty in production: messages will pass through untranslated")
		}
		if c.TranslatorURL != "" && c.TranslatorAPIKey == "" {
			log.Warn().Msg("TRANSLATOR_API_KEY is empty in production: translator requests will be unauthenticated")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
