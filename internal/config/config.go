// Package config loads chartnote settings from YAML, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "chartnote.yaml"

type Config struct {
	Roster      RosterConfig      `yaml:"roster"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Logging     LoggingConfig     `yaml:"logging"`
	Server      ServerConfig      `yaml:"server"`
	Export      ExportConfig      `yaml:"export"`
}

type RosterConfig struct {
	// Path to a roster database. Empty uses the built-in demo roster.
	Path string `yaml:"path"`
}

type SummarizerConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	APIKeys         []string      `yaml:"api_keys"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	BaseURL         string        `yaml:"base_url"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	MinDelay        time.Duration `yaml:"min_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
}

type TranscriberConfig struct {
	Provider string        `yaml:"provider"`
	Inbox    string        `yaml:"inbox"`
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

const (
	ProviderMock      = "mock"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderDirectory = "directory"
)

// Load reads the YAML file at path, applies .env and CHARTNOTE_* overrides
// and validates the result. An empty path reads DefaultFile if present and
// otherwise starts from defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHARTNOTE_SUMMARIZER"); v != "" {
		cfg.Summarizer.Provider = v
	}
	if v := os.Getenv("CHARTNOTE_GEMINI_API_KEYS"); v != "" {
		cfg.Summarizer.APIKeys = splitKeys(v)
	}
	if v := os.Getenv("CHARTNOTE_ANTHROPIC_API_KEY"); v != "" {
		cfg.Summarizer.AnthropicAPIKey = v
	}
	if v := os.Getenv("CHARTNOTE_TRANSCRIBER"); v != "" {
		cfg.Transcriber.Provider = v
	}
	if v := os.Getenv("CHARTNOTE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHARTNOTE_ROSTER"); v != "" {
		cfg.Roster.Path = v
	}
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Validate rejects unusable provider settings and fills defaults.
func (c *Config) Validate() error {
	if c.Summarizer.Provider == "" {
		c.Summarizer.Provider = ProviderMock
	}
	switch c.Summarizer.Provider {
	case ProviderMock:
	case ProviderGemini:
		if len(c.Summarizer.APIKeys) == 0 {
			return fmt.Errorf("summarizer.api_keys is required for the gemini provider")
		}
		if c.Summarizer.Model == "" {
			c.Summarizer.Model = "gemini-2.5-flash"
		}
	case ProviderAnthropic:
		if c.Summarizer.AnthropicAPIKey == "" {
			return fmt.Errorf("summarizer.anthropic_api_key is required for the anthropic provider")
		}
		if c.Summarizer.Model == "" {
			c.Summarizer.Model = "claude-haiku-4-5"
		}
	default:
		return fmt.Errorf("unknown summarizer provider %q", c.Summarizer.Provider)
	}

	if c.Transcriber.Provider == "" {
		c.Transcriber.Provider = ProviderMock
	}
	switch c.Transcriber.Provider {
	case ProviderMock:
	case ProviderDirectory:
		if c.Transcriber.Inbox == "" {
			return fmt.Errorf("transcriber.inbox is required for the directory provider")
		}
	default:
		return fmt.Errorf("unknown transcriber provider %q", c.Transcriber.Provider)
	}

	if c.Summarizer.SettleDelay < 0 {
		return fmt.Errorf("summarizer.settle_delay must not be negative")
	}
	if c.Summarizer.SettleDelay == 0 {
		c.Summarizer.SettleDelay = time.Second
	}
	if c.Summarizer.MaxDelay < c.Summarizer.MinDelay {
		return fmt.Errorf("summarizer.max_delay must not be below min_delay")
	}
	if c.Transcriber.MaxDelay < c.Transcriber.MinDelay {
		return fmt.Errorf("transcriber.max_delay must not be below min_delay")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.File == "" {
		c.Logging.File = "chartnote.log"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "exports"
	}

	return nil
}
