package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Data backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Env               string
	LogLevel          string
	HTTPPort          int
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration

	DataBackend string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	JWTSecret string
	JWTExpiry time.Duration
	JWTIssuer string

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
	MetricsEnabled    bool

	Kakao Kakao
}

// Kakao configures the OAuth login and the "send to me" message API.
type Kakao struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string
	APIBaseURL   string
	Timeout      time.Duration
}

// Enabled reports whether Kakao login is configured.
func (k Kakao) Enabled() bool {
	return k.ClientID != "" && k.RedirectURI != ""
}

const (
	defaultEnv               = "development"
	defaultHTTPPort          = 8080
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultDataBackend = BackendMemory
	defaultSQLiteURL   = "file:gift.db?_fk=1"

	defaultDBMaxOpenConns    = 10
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = time.Hour
	defaultDBConnMaxIdleTime = 30 * time.Minute

	defaultJWTExpiry = 24 * time.Hour
	defaultJWTIssuer = "gift"

	defaultRateLimitRPS   = 20
	defaultRateLimitBurst = 40

	defaultKakaoAuthBaseURL = "https://kauth.kakao.com"
	defaultKakaoAPIBaseURL  = "https://kapi.kakao.com"
	defaultKakaoTimeout     = 5 * time.Second

	minJWTSecretLength = 32
)

// Load reads configuration values from the environment, applying defaults where necessary.
// A .env file in the working directory is read first; real environment variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Env:               getEnv("APP_ENV", defaultEnv),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		HTTPPort:          getInt("HTTP_PORT", defaultHTTPPort),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),

		DataBackend: getEnv("DATA_BACKEND", defaultDataBackend),

		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", defaultDBMaxOpenConns),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", defaultDBMaxIdleConns),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", defaultDBConnMaxLifetime),
		DBConnMaxIdleTime: getDuration("DB_CONN_MAX_IDLE_TIME", defaultDBConnMaxIdleTime),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: getDuration("JWT_EXPIRY", defaultJWTExpiry),
		JWTIssuer: getEnv("JWT_ISSUER", defaultJWTIssuer),

		RateLimitRPS:      getFloat("RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst:    getInt("RATE_LIMIT_BURST", defaultRateLimitBurst),
		TrustProxyHeaders: getBool("TRUST_PROXY_HEADERS", false),
		MetricsEnabled:    getBool("METRICS_ENABLED", true),

		Kakao: Kakao{
			ClientID:     os.Getenv("KAKAO_CLIENT_ID"),
			ClientSecret: os.Getenv("KAKAO_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("KAKAO_REDIRECT_URI"),
			AuthBaseURL:  getEnv("KAKAO_AUTH_BASE_URL", defaultKakaoAuthBaseURL),
			APIBaseURL:   getEnv("KAKAO_API_BASE_URL", defaultKakaoAPIBaseURL),
			Timeout:      getDuration("KAKAO_TIMEOUT", defaultKakaoTimeout),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength)
	}

	switch cfg.DataBackend {
	case BackendMemory:
		// no-op
	case BackendSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = defaultSQLiteURL
		}
	case BackendMySQL:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when DATA_BACKEND=mysql")
		}
	default:
		return Config{}, fmt.Errorf("unknown DATA_BACKEND value: %s", cfg.DataBackend)
	}

	return cfg, nil
}

// DatabaseDriver maps the data backend to its database/sql driver name.
func (c Config) DatabaseDriver() string {
	switch c.DataBackend {
	case BackendSQLite:
		return "sqlite3"
	case BackendMySQL:
		return "mysql"
	default:
		return ""
	}
}

func getEnv(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
