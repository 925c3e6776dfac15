package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Services ServicesConfig
	Invites  InvitesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	ServiceKey         string // shared secret identifying inter-service callers (Auth header)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/workspace?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServicesConfig holds endpoints and credentials for the auth, user and mail services.
type ServicesConfig struct {
	AuthURL        string
	AuthKey        string
	UserURL        string
	UserKey        string
	MailURL        string
	MailKey        string
	TimeoutSeconds int
}

// InvitesConfig holds invitation email settings.
type InvitesConfig struct {
	// LinkBaseURL is the frontend page an acceptance link points at; the
	// workspace name is appended as the last path segment.
	LinkBaseURL string
	SenderName  string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:1234"),
			ServiceKey:         getEnv("WORKSPACE_SERVICE_KEY", ""),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/workspace?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "workspace"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Services: ServicesConfig{
			AuthURL:        getEnv("AUTH_SERVICE_URL", "http://localhost:4000"),
			AuthKey:        getEnv("AUTH_SERVICE_KEY", ""),
			UserURL:        getEnv("USER_SERVICE_URL", "http://localhost:5000"),
			UserKey:        getEnv("USER_SERVICE_KEY", ""),
			MailURL:        getEnv("MAIL_SERVICE_URL", "http://localhost:6000"),
			MailKey:        getEnv("MAIL_SERVICE_KEY", ""),
			TimeoutSeconds: getEnvInt("SERVICE_TIMEOUT_SEC", 10),
		},
		Invites: InvitesConfig{
			LinkBaseURL: getEnv("INVITE_LINK_BASE_URL", "https://productcube.io/invite"),
			SenderName:  getEnv("INVITE_SENDER_NAME", "Productcube"),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
