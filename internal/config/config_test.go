package config

import (
	"testing"
	"time"
)

// clearEnv はこのパッケージが参照する環境変数を全て未設定にする。
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"DATABASE_URL", "BOT_TOKEN", "SESSION_SECRET", "TOKEN_MAX_AGE",
		"MIN_WITHDRAW_AMOUNT", "WITHDRAW_WEBHOOK_URL", "WEBHOOK_TIMEOUT",
		"SPIN_RETENTION_DAYS", "CLEANUP_INTERVAL", "SERVER_PORT",
		"CORS_ALLOWED_ORIGIN",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error when DATABASE_URL is not set")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/spinbux?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.UsesInsecureSecret() {
		t.Error("expected insecure default secret when SESSION_SECRET is not set")
	}
	if cfg.BotToken != "" {
		t.Errorf("BotToken = %q, want empty", cfg.BotToken)
	}
	if cfg.TokenMaxAge != 24*time.Hour {
		t.Errorf("TokenMaxAge = %v, want 24h", cfg.TokenMaxAge)
	}
	if cfg.MinWithdrawAmount != 100 {
		t.Errorf("MinWithdrawAmount = %d, want 100", cfg.MinWithdrawAmount)
	}
	if cfg.SpinRetentionDays != 90 {
		t.Errorf("SpinRetentionDays = %d, want 90", cfg.SpinRetentionDays)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want http://localhost:3000", cfg.CORSAllowedOrigin)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/spinbux?sslmode=disable")
	t.Setenv("SESSION_SECRET", "real-secret")
	t.Setenv("BOT_TOKEN", "123456:TOKEN")
	t.Setenv("TOKEN_MAX_AGE", "3600")
	t.Setenv("MIN_WITHDRAW_AMOUNT", "250")
	t.Setenv("WITHDRAW_WEBHOOK_URL", "https://ops.example.com/hook")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.UsesInsecureSecret() {
		t.Error("UsesInsecureSecret() = true, want false with explicit secret")
	}
	if cfg.TokenMaxAge != time.Hour {
		t.Errorf("TokenMaxAge = %v, want 1h", cfg.TokenMaxAge)
	}
	if cfg.MinWithdrawAmount != 250 {
		t.Errorf("MinWithdrawAmount = %d, want 250", cfg.MinWithdrawAmount)
	}
	if cfg.WithdrawWebhookURL != "https://ops.example.com/hook" {
		t.Errorf("WithdrawWebhookURL = %q, want set value", cfg.WithdrawWebhookURL)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/spinbux?sslmode=disable")
	t.Setenv("TOKEN_MAX_AGE", "not-a-number")
	t.Setenv("MIN_WITHDRAW_AMOUNT", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TokenMaxAge != 24*time.Hour {
		t.Errorf("TokenMaxAge = %v, want default 24h", cfg.TokenMaxAge)
	}
	if cfg.MinWithdrawAmount != 100 {
		t.Errorf("MinWithdrawAmount = %d, want default 100", cfg.MinWithdrawAmount)
	}
}
