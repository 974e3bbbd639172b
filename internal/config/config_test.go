package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/susu3304/studybot/internal/settlement"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/studybot")
	t.Setenv("DISCORD_CLIENT_ID", "client")
	t.Setenv("DISCORD_CLIENT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_REDIRECT_URI", "")
	t.Setenv("SETTLEMENT_POLICY_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WebBind != "0.0.0.0:3000" {
		t.Errorf("WebBind = %q", cfg.WebBind)
	}
	if cfg.WebUIBaseURL != "http://localhost:3000" {
		t.Errorf("WebUIBaseURL = %q", cfg.WebUIBaseURL)
	}
	if cfg.Locale != "ko" {
		t.Errorf("Locale = %q", cfg.Locale)
	}
	if cfg.Policy.PenaltyPerMiss != settlement.DefaultPenaltyPerMiss {
		t.Errorf("PenaltyPerMiss = %d", cfg.Policy.PenaltyPerMiss)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	for _, key := range []string{"DISCORD_TOKEN", "DATABASE_URL", "DISCORD_CLIENT_ID", "DISCORD_CLIENT_SECRET"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")
			if _, err := Load(); err == nil {
				t.Fatalf("Load() without %s succeeded", key)
			}
		})
	}
}

func TestLoadPolicyFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("penalty_per_miss: 3000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SETTLEMENT_POLICY_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Policy.PenaltyPerMiss != 3000 {
		t.Errorf("PenaltyPerMiss = %d, want 3000", cfg.Policy.PenaltyPerMiss)
	}

	t.Setenv("SETTLEMENT_POLICY_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("Load() with missing policy file succeeded")
	}
}

func TestExtractBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:3000/api/auth/callback", "http://localhost:3000"},
		{"https://study.example.com/api/auth/callback", "https://study.example.com"},
		{"not a url", "http://localhost:3000"},
		{"", "http://localhost:3000"},
	}
	for _, tt := range tests {
		if got := extractBaseURL(tt.in); got != tt.want {
			t.Errorf("extractBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
