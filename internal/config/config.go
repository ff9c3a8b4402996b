package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

const (
	StorageMemory    = "memory"
	StorageSQLite    = "sqlite"
	StorageFirestore = "firestore"

	ProviderMock   = "mock"
	ProviderVertex = "vertex"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Mode Mode `toml:"mode" yaml:"mode"`

	Port          string `toml:"port" yaml:"port"`
	DefaultUserID string `toml:"default_user_id" yaml:"default_user_id"`
	CORSOrigin    string `toml:"cors_origin" yaml:"cors_origin"`

	LogFormat string `toml:"log_format" yaml:"log_format"` // "json" or "text"
	LogLevel  string `toml:"log_level" yaml:"log_level"`

	StorageBackend string `toml:"storage_backend" yaml:"storage_backend"` // "memory", "sqlite" or "firestore"
	SQLitePath     string `toml:"sqlite_path" yaml:"sqlite_path"`

	GCPProjectID string `toml:"gcp_project" yaml:"gcp_project"`
	GCPLocation  string `toml:"gcp_location" yaml:"gcp_location"`

	ModelProvider string `toml:"model_provider" yaml:"model_provider"` // "mock", "vertex", "gemini" or "openai"
	ModelName     string `toml:"model_name" yaml:"model_name"`
	GeminiAPIKey  string `toml:"gemini_api_key" yaml:"gemini_api_key"`
	OpenAIBaseURL string `toml:"openai_base_url" yaml:"openai_base_url"`
	OpenAIAPIKey  string `toml:"openai_api_key" yaml:"openai_api_key"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Mode:           ModeLocal,
		Port:           "8000",
		DefaultUserID:  "test_user",
		CORSOrigin:     "*",
		LogFormat:      "text",
		LogLevel:       "info",
		StorageBackend: StorageMemory,
		SQLitePath:     "./database.db",
		GCPLocation:    "us-central1",
		ModelProvider:  ProviderMock,
		OpenAIBaseURL:  "https://api.openai.com/v1",
	}
}

// Load builds the config from defaults, then the file named by TODO_CONFIG
// (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("TODO_CONFIG"); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyModeDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays a TOML or YAML file on cfg. The format is picked by extension.
func LoadFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file %s (want .toml, .yaml or .yml)", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TODO_MODE"); v != "" {
		cfg.Mode = Mode(strings.ToLower(v))
	}

	cfg.Port = getEnv("TODO_PORT", getEnv("PORT", cfg.Port))
	cfg.DefaultUserID = getEnv("TODO_DEFAULT_USER", cfg.DefaultUserID)
	cfg.CORSOrigin = getEnv("TODO_CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogFormat = getEnv("TODO_LOG_FORMAT", cfg.LogFormat)
	cfg.LogLevel = getEnv("TODO_LOG_LEVEL", cfg.LogLevel)

	cfg.StorageBackend = getEnv("TODO_STORAGE_BACKEND", cfg.StorageBackend)
	cfg.SQLitePath = getEnv("TODO_SQLITE_PATH", cfg.SQLitePath)

	cfg.GCPProjectID = getEnv("TODO_GCP_PROJECT", cfg.GCPProjectID)
	cfg.GCPLocation = getEnv("TODO_GCP_LOCATION", cfg.GCPLocation)

	cfg.ModelProvider = getEnv("TODO_MODEL_PROVIDER", cfg.ModelProvider)
	cfg.ModelName = getEnv("TODO_MODEL_NAME", cfg.ModelName)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.OpenAIBaseURL = getEnv("TODO_OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
}

// gcp mode logs JSON for Cloud Logging and defaults to Vertex.
func applyModeDefaults(cfg *Config) {
	if cfg.Mode != ModeGCP {
		return
	}
	if os.Getenv("TODO_LOG_FORMAT") == "" {
		cfg.LogFormat = "json"
	}
	if os.Getenv("TODO_MODEL_PROVIDER") == "" && cfg.ModelProvider == ProviderMock {
		cfg.ModelProvider = ProviderVertex
	}
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLocal, ModeGCP:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return fmt.Errorf("TODO_GCP_PROJECT must be set in gcp mode")
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite storage requires TODO_SQLITE_PATH")
		}
	case StorageFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("firestore storage requires TODO_GCP_PROJECT")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	switch c.ModelProvider {
	case ProviderMock:
	case ProviderVertex:
		if c.GCPProjectID == "" || c.GCPLocation == "" {
			return fmt.Errorf("vertex provider requires TODO_GCP_PROJECT and TODO_GCP_LOCATION")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini provider requires GEMINI_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown model provider %q", c.ModelProvider)
	}

	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	return nil
}

// Addr is the listen address derived from Port.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
