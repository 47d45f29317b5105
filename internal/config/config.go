package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Budgets and notifications
	DefaultAlertThreshold int
	Currency              string
	NotificationTTL       time.Duration

	// Scheduler
	ReminderSweepCron string
	BudgetCheckCron   string

	// Internal endpoints
	PipelineAPIKey string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fintrack"),
		DBPassword: getEnv("DB_PASSWORD", "fintrack"),
		DBName:     getEnv("DB_NAME", "fintrack"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		Currency: getEnv("CURRENCY", "IDR"),

		ReminderSweepCron: getEnv("REMINDER_SWEEP_CRON", "*/5 * * * *"),
		BudgetCheckCron:   getEnv("BUDGET_CHECK_CRON", "0 9 * * *"),

		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)
	config.NotificationTTL = getDuration("NOTIFICATION_TTL", 7*24*time.Hour)

	thresholdStr := getEnv("BUDGET_ALERT_THRESHOLD", "80")
	threshold, err := strconv.Atoi(thresholdStr)
	if err != nil || threshold < 1 || threshold > 100 {
		log.Printf("Warning: invalid BUDGET_ALERT_THRESHOLD value '%s', falling back to 80\n", thresholdStr)
		threshold = 80
	}
	config.DefaultAlertThreshold = threshold

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
