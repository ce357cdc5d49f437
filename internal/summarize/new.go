// Package summarize provides the SOAP note generators behind the
// consultation workflow.
package summarize

import (
	"fmt"

	"github.com/jwulff/chartnote/internal/config"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/logger"
)

// New builds the summarizer selected by cfg.Provider.
func New(cfg config.SummarizerConfig, log logger.Logger) (consult.Summarizer, error) {
	switch cfg.Provider {
	case config.ProviderMock, "":
		return &Mock{MinDelay: cfg.MinDelay, MaxDelay: cfg.MaxDelay}, nil
	case config.ProviderGemini:
		if len(cfg.APIKeys) == 0 {
			return nil, fmt.Errorf("gemini summarizer needs at least one API key")
		}
		return NewGemini(cfg.APIKeys, cfg.Model, log), nil
	case config.ProviderAnthropic:
		return &Anthropic{APIKey: cfg.AnthropicAPIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}, nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}
