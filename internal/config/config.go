package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultCORSOrigins = "http://localhost:3000,http://193.222.99.69:3000,http://193.222.99.69"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string
	DatabaseURL    string
	AutoMigrate    bool
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	JWTSecret      string
	AccessTokenTTL time.Duration
	CORSOrigins    []string
	SwaggerHost    string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://postgres:postgres@db:5432/tutor_crm?sslmode=disable"),
		AutoMigrate:    getEnvBool("AUTO_MIGRATE", true),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", defaultCORSOrigins)),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
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
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
