package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"` // Public URL short links are built on
	RedisURL    string `env:"REDIS_URL"`                                   // Optional; links are served uncached without it
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Auth provider (GoTrue / Supabase Auth)
	AuthURL        string `env:"GOTRUE_URL"`           // Full GoTrue URL, e.g. http://localhost:9999
	AuthProjectRef string `env:"SUPABASE_PROJECT_REF"` // Used when GOTRUE_URL is empty
	AuthAPIKey     string `env:"SUPABASE_ANON_KEY,required,notEmpty"`
	JWTSecret      string `env:"JWT_SECRET,required,notEmpty"` // Secret the provider signs access tokens with
	JWTAudience    string `env:"JWT_AUDIENCE" envDefault:"authenticated"`

	RateLimitRPS           float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst         int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
	RateLimitAuthRPS       float64 `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"` // Stricter for auth endpoints
	RateLimitAuthBurst     int     `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`
	RateLimitRedirectRPS   float64 `env:"RATE_LIMIT_REDIRECT_RPS" envDefault:"30"` // More lenient for redirects
	RateLimitRedirectBurst int     `env:"RATE_LIMIT_REDIRECT_BURST" envDefault:"60"`
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables", slog.String("error", err.Error()))
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints env tags cannot express
func (c *Config) Validate() error {
	if c.AuthURL == "" && c.AuthProjectRef == "" {
		return errors.New("either GOTRUE_URL or SUPABASE_PROJECT_REF must be set")
	}
	if c.RateLimitBurst <= 0 || c.RateLimitAuthBurst <= 0 || c.RateLimitRedirectBurst <= 0 {
		return errors.New("rate limit burst sizes must be positive")
	}
	return nil
}
