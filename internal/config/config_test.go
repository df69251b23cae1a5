package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.JWTExpirationDur != 720*time.Hour {
		t.Errorf("expected default token lifetime 720h, got %s", cfg.JWTExpirationDur)
	}
	if cfg.MailProvider != "log" {
		t.Errorf("expected default mail provider log, got %s", cfg.MailProvider)
	}
	if cfg.OTPDebugEcho {
		t.Error("expected OTP echo to be off by default")
	}
}

func TestJWTExpirationParsing(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "24h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.JWTExpirationDur != 24*time.Hour {
		t.Errorf("expected 24h, got %s", cfg.JWTExpirationDur)
	}
}

func TestJWTExpirationFallbackOnGarbage(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "thirty-days")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.JWTExpirationDur != 720*time.Hour {
		t.Errorf("expected fallback 720h, got %s", cfg.JWTExpirationDur)
	}
}

func TestOTPDebugEcho(t *testing.T) {
	t.Run("enabled_in_development", func(t *testing.T) {
		t.Setenv("ENV", "development")
		t.Setenv("OTP_DEBUG_ECHO", "true")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if !cfg.OTPDebugEcho {
			t.Error("expected OTP echo to be enabled in development")
		}
	})

	t.Run("forced_off_in_production", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("OTP_DEBUG_ECHO", "true")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cfg.OTPDebugEcho {
			t.Error("OTP echo must never be enabled in production")
		}
	})
}
