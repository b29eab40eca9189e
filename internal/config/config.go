package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Identity service
	IdentityAPIKey  string
	IdentityBaseURL string

	// Document store
	DocstoreProjectID string
	DocstoreBaseURL   string

	// Outbound HTTP
	HTTPTimeout time.Duration

	// Title lookup
	TitleLookupEnabled bool
	TitleLookupTimeout time.Duration
	TitleLookupMaxSize int64

	// Rate Limit
	RateLimitAuth int // 認証エンドポイントのレート（req/min）

	// Server
	ServerPort string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// defaultIdentityBaseURL はアイデンティティサービスのデフォルトエンドポイント。
const defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com/v1"

// defaultDocstoreBaseURL はドキュメントストアのデフォルトエンドポイント。
const defaultDocstoreBaseURL = "https://firestore.googleapis.com/v1"

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.IdentityAPIKey = os.Getenv("IDENTITY_API_KEY")
	if cfg.IdentityAPIKey == "" {
		missing = append(missing, "IDENTITY_API_KEY")
	}

	cfg.DocstoreProjectID = os.Getenv("DOCSTORE_PROJECT_ID")
	if cfg.DocstoreProjectID == "" {
		missing = append(missing, "DOCSTORE_PROJECT_ID")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.IdentityBaseURL = getEnvString("IDENTITY_BASE_URL", defaultIdentityBaseURL)
	cfg.DocstoreBaseURL = getEnvString("DOCSTORE_BASE_URL", defaultDocstoreBaseURL)
	cfg.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", 10*time.Second)
	cfg.TitleLookupEnabled = getEnvBool("TITLE_LOOKUP_ENABLED", true)
	cfg.TitleLookupTimeout = getEnvDuration("TITLE_LOOKUP_TIMEOUT", 3*time.Second)
	cfg.TitleLookupMaxSize = getEnvInt64("TITLE_LOOKUP_MAX_SIZE", 524288)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(getEnvString("BASE_URL", ""), "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:8080")

	return cfg, nil
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

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
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
