package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jwulff/chartnote/internal/config"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
	"github.com/jwulff/chartnote/internal/logger"
	"github.com/jwulff/chartnote/internal/summarize"
	"github.com/jwulff/chartnote/internal/transcribe"
)

// services is what the long-running commands share: the roster, the
// session registry and the configured providers behind it.
type services struct {
	cfg      *config.Config
	log      logger.Logger
	store    *db.Store
	registry *consult.Registry
}

func openServices(cfg *config.Config, log logger.Logger) (*services, error) {
	store, err := openRoster(cfg)
	if err != nil {
		return nil, err
	}

	transcriber, err := transcribe.New(cfg.Transcriber)
	if err != nil {
		store.Close()
		return nil, err
	}
	summarizer, err := summarize.New(cfg.Summarizer, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	registry := consult.NewRegistry(store, transcriber, summarizer, consult.Options{
		SettleDelay: cfg.Summarizer.SettleDelay,
		Logger:      log,
	})
	return &services{cfg: cfg, log: log, store: store, registry: registry}, nil
}

func (s *services) Close() {
	s.registry.CloseAll()
	s.store.Close()
}

// openRoster opens the configured roster file, or the demo roster when no
// path is configured.
func openRoster(cfg *config.Config) (*db.Store, error) {
	if cfg.Roster.Path == "" {
		return db.OpenMemory()
	}
	store, err := db.Open(cfg.Roster.Path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", cfg.Roster.Path, err)
	}
	return store, nil
}

// watchInbox runs the inbox watcher in the background when transcripts
// come from a directory. The returned stop function waits for it to exit.
func watchInbox(ctx context.Context, cfg *config.Config, log logger.Logger, handler transcribe.ArrivalHandler) (func(), error) {
	if cfg.Transcriber.Provider != config.ProviderDirectory {
		return func() {}, nil
	}
	if err := os.MkdirAll(cfg.Transcriber.Inbox, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}
	w, err := transcribe.NewWatcher(cfg.Transcriber.Inbox, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Watch(ctx, handler); err != nil && ctx.Err() == nil {
			log.Error(ctx, "inbox watcher stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		<-done
		w.Stop()
	}, nil
}

// reseed retries transcription for an open session that is still waiting
// for its recording.
func reseed(ctx context.Context, registry *consult.Registry, log logger.Logger, patientID string) {
	sess, err := registry.Get(patientID)
	if err != nil {
		log.Debug(ctx, "no open consultation for %s", patientID)
		return
	}
	v := sess.Snapshot()
	if v.State != consult.StateEmpty || v.Transcribing {
		return
	}
	if err := sess.Retry(); err != nil {
		log.Warn(ctx, "reseed consultation for %s: %v", patientID, err)
	}
}

// readInput reads the named file, or stdin when no file is given.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
