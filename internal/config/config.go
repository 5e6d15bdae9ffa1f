package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings 运行配置，全部可由环境变量覆盖
type Settings struct {
	ProjectName string `mapstructure:"PROJECT_NAME"`
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerAddr  string `mapstructure:"SERVER_ADDR"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`

	SecretKey                string `mapstructure:"SECRET_KEY"`
	AccessTokenExpireMinutes int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`

	PostCacheTTLSeconds int `mapstructure:"POST_CACHE_TTL_SECONDS"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	SentryDSN    string `mapstructure:"SENTRY_DSN"`
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
}

// Load reads settings from the environment, with an optional .env file
// for local development. Environment variables always win.
func Load() (*Settings, error) {
	v := viper.New()

	v.SetDefault("PROJECT_NAME", "Blog API")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=blog port=5432 sslmode=disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("POST_CACHE_TTL_SECONDS", 300)
	v.SetDefault("RATE_LIMIT_RPS", 50.0)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("OTLP_ENDPOINT", "")

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// .env 缺失不算错误
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AccessTokenTTL returns the configured token lifetime.
func (s *Settings) AccessTokenTTL() time.Duration {
	return time.Duration(s.AccessTokenExpireMinutes) * time.Minute
}

// PostCacheTTL returns the collection cache freshness window.
func (s *Settings) PostCacheTTL() time.Duration {
	return time.Duration(s.PostCacheTTLSeconds) * time.Second
}

// IsProduction reports whether we run with production logging/telemetry.
func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}
