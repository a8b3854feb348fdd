package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	JWTSecret           string
	JWTAccessTTLMinutes int
	JWTRefreshTTLDays   int

	// Administrators are provisioned statically, never derived from account rows.
	AdminIDs      []string
	AdminID       string
	AdminPassword string
	AdminEmail    string
	AdminNickname string

	UploadDir      string
	MaxUploadBytes int64

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	SweepInterval  time.Duration
	SweepGrace     time.Duration
	OTLPEndpoint   string
	AllowedOrigins []string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	return Config{
		Env:                 env,
		Port:                port,
		DBURL:               dbURL,
		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 15),
		JWTRefreshTTLDays:   getEnvInt("JWT_REFRESH_TTL_DAYS", 7),
		AdminIDs:            splitCSV(getEnv("ADMIN_IDS", "")),
		AdminID:             getEnv("ADMIN_ID", ""),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:          getEnv("ADMIN_EMAIL", ""),
		AdminNickname:       getEnv("ADMIN_NICKNAME", "Administrator"),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		CacheTTL:            time.Duration(getEnvInt("CACHE_TTL_SECONDS", 5)) * time.Second,
		SweepInterval:       time.Duration(getEnvInt("SWEEP_INTERVAL_MINUTES", 15)) * time.Minute,
		SweepGrace:          time.Duration(getEnvInt("SWEEP_GRACE_MINUTES", 60)) * time.Minute,
		OTLPEndpoint:        getEnv("OTLP_ENDPOINT", ""),
		AllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "cafeblog")
	pass := getEnv("DB_PASSWORD", "cafeblog")
	name := getEnv("DB_NAME", "cafeblog")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}
