package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("EMAIL_PROVIDER", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected stub email provider by default, got %s", cfg.EmailProvider)
	}
	if cfg.InviteTokenTTL != 72*time.Hour {
		t.Fatalf("expected default invite token TTL, got %s", cfg.InviteTokenTTL)
	}
	if cfg.InviteTokenMinLength != 12 {
		t.Fatalf("expected default invite token min length, got %d", cfg.InviteTokenMinLength)
	}
	if cfg.ReminderWindow != 24*time.Hour {
		t.Fatalf("expected default reminder window, got %s", cfg.ReminderWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")
	t.Setenv("INVITE_TOKEN_TTL", "48h")
	t.Setenv("REMINDER_WINDOW", "12h")
	t.Setenv("SUMMARY_TEMPERATURE", "0.7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Fatalf("expected normalized email provider, got %s", cfg.EmailProvider)
	}
	if cfg.InviteTokenTTL != 48*time.Hour {
		t.Fatalf("expected invite TTL override, got %s", cfg.InviteTokenTTL)
	}
	if cfg.ReminderWindow != 12*time.Hour {
		t.Fatalf("expected reminder window override, got %s", cfg.ReminderWindow)
	}
	if cfg.SummaryTemperature != 0.7 {
		t.Fatalf("expected summary temperature override, got %f", cfg.SummaryTemperature)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected parsed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}
