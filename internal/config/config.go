// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "moodmate-dev-secret-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBHost                        string `mapstructure:"DB_HOST"`
	DBPort                        string `mapstructure:"DB_PORT"`
	DBUser                        string `mapstructure:"DB_USER"`
	DBPassword                    string `mapstructure:"DB_PASSWORD"`
	DBName                        string `mapstructure:"DB_NAME"`
	DBSSLMode                     string `mapstructure:"DB_SSLMODE"`
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	DBMaxOpenConns                int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTIssuer   string `mapstructure:"JWT_ISSUER"`
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	VibeMonthlyQuota    int `mapstructure:"VIBE_MONTHLY_QUOTA"`
	FeedCacheTTLSeconds int `mapstructure:"FEED_CACHE_TTL_SECONDS"`

	GroqAPIKey             string  `mapstructure:"GROQ_API_KEY"`
	GroqBaseURL            string  `mapstructure:"GROQ_BASE_URL"`
	GroqModel              string  `mapstructure:"GROQ_MODEL"`
	GroqRPS                float64 `mapstructure:"GROQ_RPS"`
	EmotionServiceURL      string  `mapstructure:"EMOTION_SERVICE_URL"`
	UpstreamTimeoutSeconds int     `mapstructure:"UPSTREAM_TIMEOUT_SECONDS"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`

	// SeedDemo fills an empty development database with demo vibes on boot.
	SeedDemo bool `mapstructure:"SEED_DEMO"`
}

var defaults = map[string]any{
	"PORT":                             "8375",
	"APP_ENV":                          "development",
	"LOG_LEVEL":                        "info",
	"DB_HOST":                          "localhost",
	"DB_PORT":                          "5432",
	"DB_USER":                          "",
	"DB_PASSWORD":                      "",
	"DB_NAME":                          "moodmate",
	"DB_SSLMODE":                       "disable",
	"DB_SCHEMA_MODE":                   "hybrid",
	"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE": false,
	"DB_MAX_OPEN_CONNS":                25,
	"DB_MAX_IDLE_CONNS":                5,
	"DB_CONN_MAX_LIFETIME_MINUTES":     5,
	"REDIS_URL":                        "localhost:6379",
	"JWT_SECRET":                       "",
	"JWT_ISSUER":                       "moodmate-auth",
	"JWT_AUDIENCE":                     "moodmate-client",
	"ALLOWED_ORIGINS":                  "",
	"FEATURE_FLAGS":                    "image_mood=on",
	"VIBE_MONTHLY_QUOTA":               5,
	"FEED_CACHE_TTL_SECONDS":           30,
	"GROQ_API_KEY":                     "",
	"GROQ_BASE_URL":                    "https://api.groq.com/openai/v1",
	"GROQ_MODEL":                       "llama-3.3-70b-versatile",
	"GROQ_RPS":                         2.0,
	"EMOTION_SERVICE_URL":              "http://localhost:5000",
	"UPSTREAM_TIMEOUT_SECONDS":         20,
	"TRACING_ENABLED":                  false,
	"TRACING_EXPORTER":                 "stdout",
	"OTLP_ENDPOINT":                    "",
	"TRACING_SAMPLE_RATIO":             1.0,
	"SEED_DEMO":                        false,
}

// LoadConfig loads application configuration from .env, config files and
// environment variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// The base file is optional.
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env != "development" && env != "" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config.%s.yml: %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.GroqBaseURL = strings.TrimRight(strings.TrimSpace(c.GroqBaseURL), "/")
	c.EmotionServiceURL = strings.TrimRight(strings.TrimSpace(c.EmotionServiceURL), "/")

	if c.JWTSecret == "" && !c.IsProduction() {
		log.Println("WARNING: JWT_SECRET is not set; using the development secret.")
		c.JWTSecret = devJWTSecret
	}
}

// IsProduction reports whether APP_ENV names a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// UpstreamTimeout is the per-call timeout for Groq and the emotion classifier.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// FeedCacheTTL is the lifetime of the cached anonymous feed.
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.FeedCacheTTLSeconds) * time.Second
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.VibeMonthlyQuota < 1 {
		return errors.New("VIBE_MONTHLY_QUOTA must be at least 1")
	}
	if c.FeedCacheTTLSeconds < 0 {
		return errors.New("FEED_CACHE_TTL_SECONDS must not be negative")
	}
	if c.UpstreamTimeoutSeconds < 1 {
		return errors.New("UPSTREAM_TIMEOUT_SECONDS must be at least 1")
	}
	if c.GroqRPS <= 0 {
		return errors.New("GROQ_RPS must be positive")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.DBConnMaxLifetimeMinutes < 1 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must be at least 1")
	}
	if c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	switch c.DBSchemaMode {
	case "", "hybrid", "sql", "auto":
	default:
		return fmt.Errorf("DB_SCHEMA_MODE %q is not one of hybrid, sql, auto", c.DBSchemaMode)
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == devJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
