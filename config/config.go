package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Mode     string
	LogLevel string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RatesAPIURL string
	RatesAPIKey string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	ScrapeEnabled  bool
	ChromeBin      string

	StatePath      string
	FullCSVPath    string
	SummaryCSVPath string
	HTTPAddr       string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Mode:     strings.ToLower(getEnv("MODE", "report")),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "rca"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "rca123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rate_comparison"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RatesAPIURL: getEnv("RATES_API_URL", ""),
		RatesAPIKey: getEnv("RATES_API_KEY", ""),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		ScrapeEnabled:  getEnvBool("SCRAPE_ENABLED", false),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		StatePath:      getEnv("STATE_PATH", "./state/wizard_state.json"),
		FullCSVPath:    getEnv("FULL_CSV_PATH", "./output/rate_data_full.csv"),
		SummaryCSVPath: getEnv("SUMMARY_CSV_PATH", "./output/rate_comparison_summary.csv"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
