package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string
	JWTSecret      string

	// Background jobs
	SchedulerEnabled         bool
	SchedulerInterval        time.Duration
	SchedulerRetryBackoff    time.Duration
	SchedulerShutdownTimeout time.Duration
	RenewalLookaheadDays     int

	// Manual generation
	GenerationRateLimit string // ulule/limiter formatted rate, e.g. "10-M"
	BacklogDefaultDays  int

	// Analytics
	PosthogAPIKey   string `mapstructure:"POSTHOG_API_KEY"`
	PosthogEndpoint string `mapstructure:"POSTHOG_ENDPOINT"`

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("SCHEDULER_INTERVAL", "24h")
	viper.SetDefault("SCHEDULER_RETRY_BACKOFF", "1h")
	viper.SetDefault("SCHEDULER_SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("RENEWAL_LOOKAHEAD_DAYS", 30)
	viper.SetDefault("GENERATION_RATE_LIMIT", "10-M")
	viper.SetDefault("BACKLOG_DEFAULT_DAYS", 30)
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://us.i.posthog.com")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.SchedulerInterval = durationOrDefault("SCHEDULER_INTERVAL", 24*time.Hour)
	cfg.SchedulerRetryBackoff = durationOrDefault("SCHEDULER_RETRY_BACKOFF", time.Hour)
	cfg.SchedulerShutdownTimeout = durationOrDefault("SCHEDULER_SHUTDOWN_TIMEOUT", 30*time.Second)

	cfg.RenewalLookaheadDays = viper.GetInt("RENEWAL_LOOKAHEAD_DAYS")
	if cfg.RenewalLookaheadDays < 0 {
		log.Printf("Warning: RENEWAL_LOOKAHEAD_DAYS is negative (%d). Defaulting to 30.\n", cfg.RenewalLookaheadDays)
		cfg.RenewalLookaheadDays = 30
	}

	cfg.BacklogDefaultDays = viper.GetInt("BACKLOG_DEFAULT_DAYS")
	if cfg.BacklogDefaultDays <= 0 {
		cfg.BacklogDefaultDays = 30
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	if cfg.PosthogAPIKey == "" {
		log.Println("Warning: POSTHOG_API_KEY not set. Usage analytics are disabled.")
	}
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.SchedulerEnabled = viper.GetBool("SCHEDULER_ENABLED")
	cfg.GenerationRateLimit = viper.GetString("GENERATION_RATE_LIMIT")

	return cfg, nil
}

// durationOrDefault parses a duration key, falling back (with a warning) when it is invalid.
func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
