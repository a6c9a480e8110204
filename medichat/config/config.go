package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAllowedOrigins is used when ALLOWED_ORIGINS is unset.
var DefaultAllowedOrigins = []string{
	"https://chatbot-plum-seven.vercel.app",
	"http://localhost:3000",
	"http://127.0.0.1:8000",
}

type Config struct {
	Port           string
	AllowedOrigins []string

	// Authorization
	AdminPassword string
	DefaultAPIKey string

	// Provider
	LLMProvider     string
	OpenAIBaseURL   string
	ModelConfigPath string
	ProviderTimeout time.Duration
	Model           ModelSettings

	// Sessions
	SessionSecret  string
	SessionTTL     time.Duration
	SessionIdleTTL time.Duration

	// Rate limiting
	RateLimitPerMinute int
	RedisURL           string
	// TrustProxyHeaders lets X-Forwarded-For / X-Real-IP name the client.
	TrustProxyHeaders bool

	FrontendDir string
	LogDir      string
}

// LoadConfig reads the process environment (and a .env file if present).
// A malformed MODEL_CONFIG file is returned as an error; everything else
// falls back to defaults.
func LoadConfig() (Config, error) {
	// .env is optional, system environment wins
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8000"),
		AllowedOrigins:     parseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		DefaultAPIKey:      os.Getenv("OPENAI_API_KEY"),
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ModelConfigPath:    os.Getenv("MODEL_CONFIG"),
		ProviderTimeout:    getEnvDuration("PROVIDER_TIMEOUT", 0),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SessionTTL:         getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionIdleTTL:     getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RedisURL:           os.Getenv("REDIS_URL"),
		TrustProxyHeaders:  getEnvBool("TRUST_PROXY_HEADERS", false),
		FrontendDir:        getEnv("FRONTEND_DIR", "./frontend"),
		LogDir:             getEnv("LOG_DIR", "./logs"),
	}

	model, err := LoadModelSettings(cfg.ModelConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg.Model = model
	return cfg, nil
}

func parseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return append([]string(nil), DefaultAllowedOrigins...)
	}
	return origins
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}
