package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported user store backends.
const (
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	LogLevel   string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	MySQLDSN      string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret    string
	JWTExpiresIn time.Duration

	SMTPHost       string
	SMTPUser       string
	SMTPPass       string
	EmailFrom      string
	SMTPSkipVerify bool

	ResetPasswordURL      string
	ResetHideUnknownEmail bool

	RepositoryTimeout   time.Duration
	NotificationTimeout time.Duration

	SwaggerHost string
}

// Load reads an optional .env file and builds Config from the environment
// with sensible defaults. A missing signing secret is an error: the server
// must not start without one.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:            getEnv("APP_PORT", "8082"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		StoreDriver:           strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnv("MONGO_DB", "userauth"),
		MySQLDSN:              getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		RedisPass:             os.Getenv("REDIS_PASSWORD"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		JWTExpiresIn:          getEnvDuration("JWT_EXPIRES_IN", time.Hour),
		SMTPHost:              os.Getenv("SMTP_HOST"),
		SMTPUser:              os.Getenv("SMTP_USER"),
		SMTPPass:              os.Getenv("SMTP_PASS"),
		EmailFrom:             os.Getenv("EMAIL_FROM"),
		SMTPSkipVerify:        getEnvBool("SMTP_SKIP_VERIFY", false),
		ResetPasswordURL:      getEnv("RESET_PASSWORD_URL", "http://localhost:8082/reset-password"),
		ResetHideUnknownEmail: getEnvBool("RESET_HIDE_UNKNOWN_EMAIL", false),
		RepositoryTimeout:     getEnvDuration("REPOSITORY_TIMEOUT", 5*time.Second),
		NotificationTimeout:   getEnvDuration("NOTIFICATION_TIMEOUT", 10*time.Second),
		SwaggerHost:           os.Getenv("SWAGGER_HOST"),
	}

	if cfg.EmailFrom == "" {
		cfg.EmailFrom = cfg.SMTPUser
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and consistent.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI environment variable is required for the mongo store")
		}
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return errors.New("MYSQL_DSN environment variable is required for the mysql store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("1h", "90s") or plain seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if parsed, err := time.ParseDuration(v); err == nil {
		return parsed
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
