package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MONGO_URI", "MONGODB_URI", "REDIS_URI", "SESSION_SECRET", "SECRET_KEY", "PORT", "ENV",
		"STORAGE_BACKEND", "ALLOWED_ORIGINS", "TRUST_PROXY", "LOG_LEVEL", "GEMINI_API_KEY",
		"GOOGLE_API_KEY", "GEMINI_MODEL", "AI_TIMEOUT", "ASK_RATE_LIMIT", "ASK_RATE_WINDOW",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "mongodb://localhost:27017/mental_health_db", cfg.MongoURI)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURI)
	assert.Equal(t, "dev-secret-change-me", cfg.SessionSecret)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, BackendMongo, cfg.StorageBackend)
	assert.Equal(t, 10, cfg.AskRateLimit)
	assert.Equal(t, time.Hour, cfg.AskRateWindow)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.False(t, cfg.AIEnabled())
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoad_APIKeyFallsBackToGoogleKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg := Load()
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.True(t, cfg.AIEnabled())

	t.Setenv("GEMINI_API_KEY", "gem-key")
	assert.Equal(t, "gem-key", Load().GeminiAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", " Production ")
	t.Setenv("SECRET_KEY", "legacy")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ASK_RATE_LIMIT", "3")
	t.Setenv("ASK_RATE_WINDOW", "120")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("STORAGE_BACKEND", "MEMORY")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "legacy", cfg.SessionSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.AskRateLimit)
	assert.Equal(t, 2*time.Minute, cfg.AskRateWindow)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
}

func TestLoad_InvalidNumbersUseDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ASK_RATE_LIMIT", "-1")
	t.Setenv("ASK_RATE_WINDOW", "soon")

	cfg := Load()
	assert.Equal(t, 10, cfg.AskRateLimit)
	assert.Equal(t, time.Hour, cfg.AskRateWindow)
}

func TestMongoDatabase(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017/serenify":                     "serenify",
		"mongodb://mongo:27017/mental_health_db?retryWrites=true": "mental_health_db",
		"mongodb+srv://u:p@cluster.example.net/prod?tls=true":     "prod",
		"mongodb://localhost:27017":                               "mental_health_db",
		"mongodb://localhost:27017/":                              "mental_health_db",
		"garbage":                                                 "mental_health_db",
	}
	for uri, want := range tests {
		cfg := &Config{MongoURI: uri}
		assert.Equal(t, want, cfg.MongoDatabase(), uri)
	}
}
