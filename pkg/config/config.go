package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups the application configuration, read via Viper from the
// environment with sensible defaults for local development.
type Config struct {
	App   AppConfig
	DB    DBConfig
	HTTP  HTTPConfig
	Cache CacheConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// DBConfig holds PostgreSQL settings. When DatabaseURL is set it is used as
// the full connection string.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// DSN returns the connection string: DatabaseURL when set, otherwise one
// built from the individual fields.
func (c DBConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Host         string
	Port         int
	AllowOrigins []string
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds the rule cache settings.
type CacheConfig struct {
	RuleTTLMinutes int
}

// RuleTTL returns the rule cache time-to-live as a duration.
func (c CacheConfig) RuleTTL() time.Duration {
	return time.Duration(c.RuleTTLMinutes) * time.Minute
}

// Load reads configuration from environment variables, with an optional
// .env file picked up beforehand by godotenv in main.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
		},
		HTTP: HTTPConfig{
			Host:         v.GetString("HTTP_HOST"),
			Port:         v.GetInt("HTTP_PORT"),
			AllowOrigins: v.GetStringSlice("HTTP_ALLOW_ORIGINS"),
		},
		Cache: CacheConfig{
			RuleTTLMinutes: v.GetInt("RULE_CACHE_TTL_MINUTES"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "tax-engine")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "taxengine")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("HTTP_ALLOW_ORIGINS", []string{"http://localhost:5173"})

	v.SetDefault("RULE_CACHE_TTL_MINUTES", 30)
}
