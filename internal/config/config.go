package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the full runtime configuration. Everything is overridable via
// TASKDIGEST_* environment variables; the CLI layers flag values on top.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	InputDir  string `envconfig:"INPUT_DIR" default:"inputs"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"outputs"`

	// RulesPath points at an optional versioned YAML rule table. Empty means
	// the built-in default table.
	RulesPath string `envconfig:"RULES_PATH" default:""`

	// Chunking bounds for long email bodies.
	ChunkMaxChars int `envconfig:"CHUNK_MAX_CHARS" default:"1200"`
	ChunkOverlap  int `envconfig:"CHUNK_OVERLAP" default:"120"`

	// Synthesis collaborator (optional). Mode is "none" or "ollama".
	LLMMode            string        `envconfig:"LLM_MODE" default:"none"`
	OllamaURL          string        `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OllamaModel        string        `envconfig:"OLLAMA_MODEL" default:"phi3:mini"`
	SuggestTimeout     time.Duration `envconfig:"SUGGEST_TIMEOUT" default:"45s"`
	SuggestConcurrency int           `envconfig:"SUGGEST_CONCURRENCY" default:"4"`

	// Viewer settings for the serve command.
	ServePort   string `envconfig:"SERVE_PORT" default:"8080"`
	RefreshCron string `envconfig:"REFRESH_CRON" default:""`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("taskdigest", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the relationships struct tags cannot express.
func (c *Config) Validate() error {
	if c.ChunkMaxChars <= 0 {
		return fmt.Errorf("chunk max chars must be positive, got %d", c.ChunkMaxChars)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkMaxChars {
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", c.ChunkMaxChars, c.ChunkOverlap)
	}
	if c.LLMMode != "none" && c.LLMMode != "ollama" {
		return fmt.Errorf("unsupported llm mode: %s (supported: none, ollama)", c.LLMMode)
	}
	if c.SuggestConcurrency < 1 {
		return fmt.Errorf("suggest concurrency must be at least 1, got %d", c.SuggestConcurrency)
	}
	return nil
}
