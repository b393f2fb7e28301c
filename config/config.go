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
	Port     string
	LogLevel string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string // Overrides the DSN composed from the DB_* keys

	WatchWriteInterval    time.Duration // Minimum spacing of watch-progress writes per content item
	ProgressFlushSchedule string        // Cron spec for flushing throttled writes

	AnalyticsURL     string // Empty disables the HTTP analytics sink
	AnalyticsTimeout time.Duration
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "training"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),

		WatchWriteInterval:    getEnvDuration("WATCH_WRITE_INTERVAL", 5*time.Second),
		ProgressFlushSchedule: getEnv("PROGRESS_FLUSH_SCHEDULE", "@every 15s"),

		AnalyticsURL:     getEnv("ANALYTICS_URL", ""),
		AnalyticsTimeout: getEnvDuration("ANALYTICS_TIMEOUT", 3*time.Second),
	}

	// Validate critical configuration
	if AppConfig.DBPassword == "" && AppConfig.DBDriver != "sqlite" {
		log.Println("Warning: DB_PASSWORD is empty. Update it in your environment.")
	}
	if AppConfig.DBDriver == "sqlite" && AppConfig.DBName == "training" {
		log.Println("Warning: Using default sqlite file training.db. Set DB_NAME to change it.")
	}
	if AppConfig.AnalyticsURL == "" {
		log.Println("Warning: ANALYTICS_URL not set. Training events are stored in the database only.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvDuration retrieves an environment variable as a duration ("5s", "1m"). A bare
// integer is read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		secs := getEnvInt(key, -1)
		if secs < 0 {
			log.Printf("Error converting environment variable %s to duration: %v", key, err)
			return defaultValue
		}
		return time.Duration(secs) * time.Second
	}
	return d
}
