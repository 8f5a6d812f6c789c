package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Exactly one of these is needed to verify auth provider tokens.
	AuthJWTSecret    string
	AuthJWTPublicKey string

	AllowedOrigins  []string
	DailyGoalTarget int
	StreakSweep     bool
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, reading environment variables directly")
	}

	target, err := strconv.Atoi(getEnv("DAILY_GOAL_TARGET", "3"))
	if err != nil || target <= 0 {
		return nil, fmt.Errorf("DAILY_GOAL_TARGET must be a positive integer")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "learnhub"),
		DBPassword:       getEnv("DB_PASSWORD", "learnhub"),
		DBName:           getEnv("DB_NAME", "learnhub"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		AuthJWTSecret:    getEnv("AUTH_JWT_SECRET", ""),
		AuthJWTPublicKey: getEnv("AUTH_JWT_PUBLIC_KEY", ""),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		DailyGoalTarget:  target,
		StreakSweep:      getEnv("STREAK_SWEEP_ENABLED", "true") != "false",
	}
	return cfg, nil
}

// DSN returns the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
