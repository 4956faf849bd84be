package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/auth")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.SessionTTL != time.Hour || cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h session/token ttl, got %v/%v", cfg.SessionTTL, cfg.TokenTTL)
	}
	if cfg.VerificationTTL != 15*time.Minute {
		t.Fatalf("expected 15m verification ttl, got %v", cfg.VerificationTTL)
	}
	if !cfg.DBAutoMigrate || cfg.PasswordBcrypt {
		t.Fatalf("unexpected flags: migrate=%v bcrypt=%v", cfg.DBAutoMigrate, cfg.PasswordBcrypt)
	}
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/auth")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is empty")
	}
}

func TestLoadConfig_DurationOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/auth")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("VERIFICATION_TTL", "5m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.VerificationTTL != 5*time.Minute {
		t.Fatalf("expected 5m, got %v", cfg.VerificationTTL)
	}
}
