// Package config loads the service configuration. Configuration is read
// once at startup and passed by value into constructors; there is no
// ambient global state and no lazy initialization on first use.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML decoding from strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(td)
	return nil
}

// Weaviate holds the earnings-search index connection settings.
type Weaviate struct {
	Host   string `yaml:"host"`
	Scheme string `yaml:"scheme"`
	Class  string `yaml:"class"`
}

// Config is the full service configuration.
type Config struct {
	ListenAddr   string   `yaml:"listen_addr"`
	Provider     string   `yaml:"provider"` // "gemini" or "openai"
	Model        string   `yaml:"model"`
	SystemPrompt string   `yaml:"system_prompt"` // empty selects the built-in default
	MaxCycles    int      `yaml:"max_cycles"`
	ToolTimeout  Duration `yaml:"tool_timeout"`
	Database     string   `yaml:"database"`
	Weaviate     Weaviate `yaml:"weaviate"`
	TraceStdout  bool     `yaml:"trace_stdout"`

	// APIKey is taken from the environment, never from the file.
	APIKey string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		Provider:   "gemini",
		Model:      "gemini-2.0-flash",
		Database:   "data/portfolio.db",
		Weaviate: Weaviate{
			Host:   "localhost:8081",
			Scheme: "http",
			Class:  "EarningsReport",
		},
	}
}

// Load reads the config file at path (optional; defaults apply when the
// file is absent), applies environment overrides, and validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	switch cfg.Provider {
	case "gemini":
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	case "openai":
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Provider != "gemini" && c.Provider != "openai" {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.MaxCycles < 0 {
		return fmt.Errorf("max_cycles must not be negative")
	}
	return nil
}
