package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	MongoURI       string
	RedisURI       string
	SessionSecret  string
	Port           string
	Environment    string   // ENV: production, development, etc.
	StorageBackend string   // "mongo" or "memory"
	AllowedOrigins []string // CORS for the JSON probe endpoints
	TrustProxy     bool     // honour X-Forwarded-For when resolving client IPs
	LogLevel       string

	// AI advisor
	GeminiAPIKey string // empty disables the ask feature without failing startup
	GeminiModel  string
	AITimeout    time.Duration

	// Per-user question budget over a sliding window
	AskRateLimit  int
	AskRateWindow time.Duration
}

func Load() *Config {
	return &Config{
		MongoURI:       getEnv("MONGO_URI", getEnv("MONGODB_URI", "mongodb://localhost:27017/mental_health_db")),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		SessionSecret:  getEnv("SESSION_SECRET", getEnv("SECRET_KEY", "dev-secret-change-me")),
		Port:           getEnv("PORT", "5000"),
		Environment:    strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendMongo)),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		TrustProxy:     getBoolEnv("TRUST_PROXY", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AITimeout:    getDurationEnv("AI_TIMEOUT", 30*time.Second),

		AskRateLimit:  getIntEnv("ASK_RATE_LIMIT", 10),
		AskRateWindow: getDurationEnv("ASK_RATE_WINDOW", time.Hour),
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AIEnabled reports whether an API credential is configured.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

// MongoDatabase extracts the database name from the connection string,
// falling back to mental_health_db.
func (c *Config) MongoDatabase() string {
	const fallback = "mental_health_db"
	rest, ok := strings.CutPrefix(c.MongoURI, "mongodb://")
	if !ok {
		rest, ok = strings.CutPrefix(c.MongoURI, "mongodb+srv://")
	}
	if !ok {
		return fallback
	}
	_, path, found := strings.Cut(rest, "/")
	if !found {
		return fallback
	}
	name, _, _ := strings.Cut(path, "?")
	if name == "" {
		return fallback
	}
	return name
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, def bool) bool {
	v := strings.ToLower(os.Getenv(key))
	switch v {
	case "":
		return def
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// getDurationEnv accepts Go durations ("90s", "1h") or a bare number of seconds.
func getDurationEnv(key string, def time.Duration) time.Duration {
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
