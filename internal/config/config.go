package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for STORE_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"
	StoreSQLite = "sqlite"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	StoreDriver         string
	MongoURI            string
	MongoDatabase       string
	MongoConnectTimeout time.Duration
	MySQLDSN            string
	SQLitePath          string
	ResetDB             bool

	RedisAddr    string
	RedisDB      int
	RedisPass    string
	PageCacheTTL time.Duration

	IDPSigningKey string
	IDPIssuer     string
	IDPSignInURL  string
	SessionCookie string

	StrictNames bool
	LogLevel    string
	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StoreDriver:         getEnv("STORE_DRIVER", StoreMongo),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "staffdir"),
		MongoConnectTimeout: getEnvDuration("MONGO_CONNECT_TIMEOUT", time.Minute),
		MySQLDSN:            getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/staffdir?charset=utf8mb4&parseTime=True&loc=Local"),
		SQLitePath:          getEnv("SQLITE_PATH", "staffdir.db"),
		ResetDB:             getEnvBool("RESET_DB", false),

		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		PageCacheTTL: getEnvDuration("PAGE_CACHE_TTL", 10*time.Minute),

		IDPSigningKey: getEnv("IDP_SIGNING_KEY", "change-me"),
		IDPIssuer:     os.Getenv("IDP_ISSUER"),
		IDPSignInURL:  os.Getenv("IDP_SIGN_IN_URL"),
		SessionCookie: getEnv("SESSION_COOKIE", "__session"),

		StrictNames: getEnvBool("STRICT_NAMES", false),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
