package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// insecureDefaultSecret はSESSION_SECRET未設定時のフォールバック値。
// 本番環境では必ず上書きすること。
const insecureDefaultSecret = "your-secret-key-change-in-production"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Telegram
	// 空の場合、識別ペイロードの署名検証は無効化される（開発用）。
	BotToken string

	// Session
	SessionSecret string
	TokenMaxAge   time.Duration

	// Withdrawal
	MinWithdrawAmount  int64
	WithdrawWebhookURL string
	WebhookTimeout     time.Duration

	// Worker
	SpinRetentionDays int
	CleanupInterval   time.Duration

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variables are not set: [DATABASE_URL]")
	}

	cfg.BotToken = os.Getenv("BOT_TOKEN")
	cfg.SessionSecret = getEnvString("SESSION_SECRET", insecureDefaultSecret)

	// トークン有効期限は秒数で指定する
	cfg.TokenMaxAge = time.Duration(getEnvInt("TOKEN_MAX_AGE", 86400)) * time.Second
	cfg.MinWithdrawAmount = getEnvInt64("MIN_WITHDRAW_AMOUNT", 100)
	cfg.WithdrawWebhookURL = getEnvString("WITHDRAW_WEBHOOK_URL", "")
	cfg.WebhookTimeout = getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second)
	cfg.SpinRetentionDays = getEnvInt("SPIN_RETENTION_DAYS", 90)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// UsesInsecureSecret はSESSION_SECRETがフォールバック値のままかを返す。
// 起動時の警告ログに使用する。
func (c *Config) UsesInsecureSecret() bool {
	return c.SessionSecret == insecureDefaultSecret
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
