package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultGenerationTimeout = 120 * time.Second

// Config is built once at startup and only read afterwards.
type Config struct {
	ServerAddr  string
	DatabaseURL string
	LogLevel    string

	JWTSecret    []byte
	RequireHTTPS bool
	// AppURL pins the public base URL used in redirects.
	AppURL string

	GenerationURL     string
	GenerationTimeout time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		ServerAddr:  EnvDefault("SERVER_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		RequireHTTPS: os.Getenv("REQUIRE_HTTPS") == "true",
		AppURL:       os.Getenv("APP_URL"),

		GenerationURL:     EnvDefault("GENERATION_URL", os.Getenv("N8N_WEBHOOK_URL")),
		GenerationTimeout: EnvDurationDefault("GENERATION_TIMEOUT", DefaultGenerationTimeout),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "study_plans"),
	}
}

// Missing lists required settings that are absent. They are not fatal:
// requests depending on them fail closed with a configuration error.
func (c *Config) Missing() []string {
	var out []string
	if len(c.JWTSecret) == 0 {
		out = append(out, "JWT_SECRET")
	}
	if c.GenerationURL == "" {
		out = append(out, "GENERATION_URL")
	}
	return out
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
