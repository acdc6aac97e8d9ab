package config

import (
	"fmt"
	"os"
	"strings"
)

type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderVertex    Provider = "vertex"
	ProviderAnthropic Provider = "anthropic"
	ProviderMock      Provider = "mock"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

const (
	StorageMemory    = "memory"
	StorageFirestore = "firestore"
)

// defaultModels holds the fixed model identifier per provider.
var defaultModels = map[Provider]string{
	ProviderGroq:      "llama3-70b-8192",
	ProviderVertex:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-3-7-sonnet-latest",
	ProviderMock:      "mock",
}

type Config struct {
	Port     string
	Version  string
	LogLevel string

	Provider  Provider
	ModelName string

	GroqAPIKey  string
	GroqBaseURL string

	AnthropicAPIKey string

	GCPProjectID string
	GCPLocation  string

	StorageBackend string // "memory" o "firestore"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

// Load reads all env vars and builds the config.
// A missing provider key is not an error; see Warnings.
func Load() (*Config, error) {
	provider := Provider(strings.ToLower(getEnv("KIN_LLM_PROVIDER", string(ProviderGroq))))
	if getBoolEnv("KIN_USE_MOCK_LLM", false) {
		provider = ProviderMock
	}
	if _, ok := defaultModels[provider]; !ok {
		return nil, fmt.Errorf("unknown KIN_LLM_PROVIDER %q", provider)
	}

	cfg := &Config{
		Port:     getEnv("KIN_PORT", getEnv("PORT", "8080")),
		Version:  getEnv("KIN_VERSION", "1.0.0"),
		LogLevel: getEnv("KIN_LOG_LEVEL", "info"),

		Provider:  provider,
		ModelName: getEnv("KIN_MODEL_NAME", defaultModels[provider]),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqBaseURL: getEnv("KIN_GROQ_BASE_URL", defaultGroqBaseURL),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		GCPProjectID: getEnv("KIN_GCP_PROJECT", ""),
		GCPLocation:  getEnv("KIN_GCP_LOCATION", "us-central1"),

		StorageBackend: strings.ToLower(getEnv("KIN_STORAGE_BACKEND", StorageMemory)),
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StorageFirestore:
		if cfg.GCPProjectID == "" {
			return nil, fmt.Errorf("KIN_GCP_PROJECT is required for the firestore storage backend")
		}
	default:
		return nil, fmt.Errorf("unknown KIN_STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

// Warnings lists startup problems that only surface on the first chat call.
func (c *Config) Warnings() []string {
	var out []string
	switch c.Provider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			out = append(out, "GROQ_API_KEY environment variable not set")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			out = append(out, "ANTHROPIC_API_KEY environment variable not set")
		}
	case ProviderVertex:
		if c.GCPProjectID == "" {
			out = append(out, "KIN_GCP_PROJECT environment variable not set")
		}
	}
	return out
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
