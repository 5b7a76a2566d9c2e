package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	OTLPEndpoint string
	OTLPProtocol string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// CommissionRate is the platform's default cut of a paid booking (0.05 = 5%).
	CommissionRate decimal.Decimal
	// PlatformFeeRate is charged on top of commission (0.02 = 2%).
	PlatformFeeRate decimal.Decimal
	// RateTolerance bounds how far total_amount may deviate from rate*nights (0.01 = 1%).
	RateTolerance decimal.Decimal

	AuditRetention   time.Duration
	SearchCacheTTL   time.Duration
	SearchRateLimit  float64
	SearchRateBurst  int
	SchedulerEnabled bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "stayhive"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),
		OTLPProtocol: strings.ToLower(getenv("OTLP_PROTOCOL", "grpc")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "stayhive"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		CommissionRate:  getenvDecimal("COMMISSION_RATE", "0.05"),
		PlatformFeeRate: getenvDecimal("PLATFORM_FEE_RATE", "0.02"),
		RateTolerance:   getenvDecimal("RATE_TOLERANCE", "0.01"),

		AuditRetention:   time.Duration(getenvInt("AUDIT_RETENTION_DAYS", 365)) * 24 * time.Hour,
		SearchCacheTTL:   time.Duration(getenvInt("SEARCH_CACHE_TTL_SECONDS", 300)) * time.Second,
		SearchRateLimit:  getenvFloat("SEARCH_RATE_LIMIT", 25),
		SearchRateBurst:  getenvInt("SEARCH_RATE_BURST", 50),
		SchedulerEnabled: getenvBool("SCHEDULER_ENABLED", true),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDecimal(key, def string) decimal.Decimal {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		value = def
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		parsed, _ = decimal.NewFromString(def)
	}
	return parsed
}
