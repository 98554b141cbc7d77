package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port     string
	BaseURL  string
	Env      string
	DBDriver string
	DBDSN    string
	DBLog    string

	AllowedOrigins []string

	AdminUsername string
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	SeedDemoData bool
	GeminiAPIKey string
	RabbitMQURL  string
}

// Load reads configuration from the process environment with defaults.
// Call godotenv.Load() first if a .env file should be honoured.
func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
		Env:           getEnv("APP_ENV", "development"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:         getEnv("DB_DSN", "optics.db"),
		DBLog:         strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		AdminUsername: getEnv("ADMIN_USERNAME", "sonata"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "optics2025"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      time.Duration(getInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		SeedDemoData:  getBool("SEED_DEMO_DATA", false),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
	}
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"))

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "dev-only-optics-secret"
		log.Println("Warning: JWT_SECRET not set, using a development secret")
	}
	return cfg
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid integer for %s: %s", key, v)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid boolean for %s: %s", key, v)
		return def
	}
	return b
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
