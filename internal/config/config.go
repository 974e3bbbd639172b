package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/susu3304/studybot/internal/settlement"
)

type Config struct {
	// Discord Bot
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	// Discord OAuth2
	DiscordClientID     string `env:"DISCORD_CLIENT_ID,notEmpty"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET,notEmpty"`
	DiscordRedirectURI  string `env:"DISCORD_REDIRECT_URI" envDefault:"http://localhost:3000/api/auth/callback"`

	// Database
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Web Server
	WebBind      string `env:"WEB_BIND" envDefault:"0.0.0.0:3000"`
	WebUIBaseURL string `env:"-"`

	// Session
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-only-change-me"`

	// Settlement
	PolicyFile string `env:"SETTLEMENT_POLICY_FILE"`
	Locale     string `env:"LOCALE" envDefault:"ko"`

	Policy settlement.Policy `env:"-"`
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Extract base URL from redirect URI
	cfg.WebUIBaseURL = extractBaseURL(cfg.DiscordRedirectURI)

	policy, err := settlement.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load settlement policy: %w", err)
	}
	cfg.Policy = policy

	return cfg, nil
}

func extractBaseURL(redirectURI string) string {
	// e.g., "http://localhost:3000/api/auth/callback" -> "http://localhost:3000"
	parsed, err := url.Parse(redirectURI)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "http://localhost:3000"
	}

	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}
