package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port            string
	Environment     string // ENV: production, development, etc.
	AllowedOrigins  []string
	UploadDir       string
	UsersFile       string
	PostgresURI     string // optional; file-backed credentials when empty
	RedisURI        string // optional; Redis rate limiting when set
	SweepInterval   time.Duration
	PresenceTimeout time.Duration
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	return &Config{
		Port:            getEnv("PORT", "5000"),
		Environment:     env,
		AllowedOrigins:  allowedOrigins,
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		UsersFile:       getEnv("USERS_FILE", "users.json"),
		PostgresURI:     getEnv("POSTGRES_URI", ""),
		RedisURI:        getEnv("REDIS_URI", ""),
		SweepInterval:   getDuration("SWEEP_INTERVAL", 5*time.Minute),
		PresenceTimeout: getDuration("PRESENCE_TIMEOUT", 10*time.Minute),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
