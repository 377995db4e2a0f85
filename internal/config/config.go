package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver string
	DBDSN    string

	JWTSecret string

	// identity provider
	IdentityProvider   string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	IdentitySessionKey string
	IdentityChannel    string

	// memory provider seed
	DevUserID    string
	DevUserEmail string

	// generation service
	GenerateURL     string
	GenerateTimeout time.Duration

	SignInPath  string
	CORSOrigins []string

	// rabbitMQ
	RabbitURL         string
	RabbitQueue       string
	WorkerConcurrency int
}

func Load() Config {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	// DSN demo：
	// app:apppass@tcp(127.0.0.1:3306)/linkedcraft?charset=utf8mb4&parseTime=true&loc=Local
	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		if driver == "sqlite" {
			dsn = "linkedcraft.db"
		} else {
			dsn = "app:apppass@tcp(127.0.0.1:3306)/linkedcraft?charset=utf8mb4&parseTime=true&loc=Local"
		}
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		Port: getEnv("PORT", "8080"),

		DBDriver: driver,
		DBDSN:    dsn,

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),

		IdentityProvider:   strings.ToLower(getEnv("IDENTITY_PROVIDER", "redis")),
		RedisAddr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		IdentitySessionKey: getEnv("IDENTITY_SESSION_KEY", "linkedcraft:session"),
		IdentityChannel:    getEnv("IDENTITY_CHANNEL", "linkedcraft:session:events"),

		DevUserID:    os.Getenv("DEV_USER_ID"),
		DevUserEmail: os.Getenv("DEV_USER_EMAIL"),

		GenerateURL:     getEnv("GENERATE_URL", "http://localhost:54321/functions/v1/generate-post"),
		GenerateTimeout: getEnvDuration("GENERATE_TIMEOUT", 0),

		SignInPath:  getEnv("SIGN_IN_PATH", "/auth"),
		CORSOrigins: origins,

		RabbitURL:         os.Getenv("RABBIT_URL"),
		RabbitQueue:       getEnv("RABBIT_QUEUE", "generation_events"),
		WorkerConcurrency: clamp(getEnvInt("WORKER_CONCURRENCY", 2), 1, 50),
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
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return def
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
