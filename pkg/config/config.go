package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for coursetrack-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8443"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Import pipeline tuning
	Import ImportConfig `yaml:"import"`

	// AI insights chat configuration
	AI AIConfig `yaml:"ai"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"coursetrack"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"coursetrack"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	// Store selects the persistence backend: "postgres" or "memory".
	// The memory store backs offline/disconnected operation and dry runs.
	Store string `yaml:"store" env:"IMPORT_STORE" env-default:"postgres"`

	// SourceHintCutoffYear is the business-rule cutoff used to disambiguate
	// time entries by export era: entry years at or below the cutoff prefer
	// legacy-sourced projects, later years prefer modern-sourced ones.
	// The export tooling changed at this year; treat as configuration.
	SourceHintCutoffYear int `yaml:"source_hint_cutoff_year" env:"IMPORT_SOURCE_HINT_CUTOFF_YEAR" env-default:"2025"`

	// EntryBatchSize bounds the number of time entries written per insert.
	EntryBatchSize int `yaml:"entry_batch_size" env:"IMPORT_ENTRY_BATCH_SIZE" env-default:"500"`
}

// AIConfig holds the insights chat provider settings.
type AIConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	BaseURL  string `yaml:"base_url" env:"AI_BASE_URL" env-default:""`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:""`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// IsAvailable returns true if the insights chat is configured.
func (c *AIConfig) IsAvailable() bool {
	return c.Model != "" && (c.APIKey != "" || c.BaseURL != "")
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// If config.yaml does not exist, configuration comes from the environment alone.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Import.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("import.store must be \"postgres\" or \"memory\", got %q", c.Import.Store)
	}
	if c.Import.EntryBatchSize <= 0 {
		return fmt.Errorf("import.entry_batch_size must be positive, got %d", c.Import.EntryBatchSize)
	}
	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("ai.provider must be \"openai\" or \"anthropic\", got %q", c.AI.Provider)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
