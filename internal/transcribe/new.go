// Package transcribe provides the transcript sources for new consultations
// and the inbox watcher that announces newly arrived transcripts.
package transcribe

import (
	"fmt"

	"github.com/jwulff/chartnote/internal/config"
	"github.com/jwulff/chartnote/internal/consult"
)

// New builds the transcriber selected by cfg.Provider.
func New(cfg config.TranscriberConfig) (consult.Transcriber, error) {
	switch cfg.Provider {
	case config.ProviderMock, "":
		return &Mock{MinDelay: cfg.MinDelay, MaxDelay: cfg.MaxDelay}, nil
	case config.ProviderDirectory:
		return &Directory{Inbox: cfg.Inbox}, nil
	default:
		return nil, fmt.Errorf("unknown transcriber provider %q", cfg.Provider)
	}
}
