package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	ServerPort string
	LogLevel   string

	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBTimeout         time.Duration
	DBAutoMigrate     bool
	MongoURI          string
	MongoDB           string
	MongoMaxPoolSize  int

	JWTSecret string
	JWTExpiry time.Duration

	RedisAddr            string
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration

	CORSAllowedOrigins []string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "tasks_user"),
		DBPassword:        getEnv("DB_PASSWORD", "tasks_pass"),
		DBName:            getEnv("DB_NAME", "tasks_db"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME_MIN", 5) * time.Minute,
		DBTimeout:         getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,
		DBAutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", true),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "tasks"),
		MongoMaxPoolSize:  getIntEnv("MONGO_MAX_POOL_SIZE", 50),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry: getDurationEnv("JWT_EXPIRY_HOURS", 72) * time.Hour,

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 20),
		RateLimitWindow:      getDurationEnv("RATE_LIMIT_WINDOW_SEC", 60) * time.Second,

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

// DSN returns the Postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using default %d", key, valueStr, defaultVal)
		return defaultVal
	}
	return value
}

// getDurationEnv returns the raw number; callers multiply by the unit.
func getDurationEnv(key string, defaultVal int) time.Duration {
	return time.Duration(getIntEnv(key, defaultVal))
}

func getBoolEnv(key string, defaultVal bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a boolean, using default %t", key, valueStr, defaultVal)
		return defaultVal
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
