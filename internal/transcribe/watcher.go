package transcribe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jwulff/chartnote/internal/logger"
)

// ArrivalHandler is called when a patient's transcript lands in the inbox.
type ArrivalHandler func(ctx context.Context, patientID string)

// Watcher monitors the transcript inbox.
type Watcher interface {
	Watch(ctx context.Context, handler ArrivalHandler) error
	Stop() error
}

type implWatcher struct {
	inbox   string
	logger  logger.Logger
	watcher *fsnotify.Watcher
	// quiet is how long a file must go unwritten before it counts as arrived.
	quiet time.Duration

	mu      sync.Mutex
	pending map[string]*pendingArrival
	wg      sync.WaitGroup
}

// NewWatcher watches inbox for transcript files.
func NewWatcher(inbox string, log logger.Logger) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inbox); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		inbox:   inbox,
		logger:  log,
		watcher: watcher,
		quiet:   300 * time.Millisecond,
		pending: make(map[string]*pendingArrival),
	}, nil
}

// Watch reports arrivals until ctx is done. Writes to the same file are
// coalesced so a transcript being written in pieces is reported once.
func (w *implWatcher) Watch(ctx context.Context, handler ArrivalHandler) error {
	w.logger.Info(ctx, "Transcript watcher started. Monitoring: %s", w.inbox)

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			w.wg.Wait()
			w.logger.Info(ctx, "Transcript watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			id := patientIDFromPath(event.Name)
			if id == "" {
				w.logger.Debug(ctx, "Ignoring non-transcript file: %s", event.Name)
				continue
			}
			w.schedule(ctx, id, handler)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

type pendingArrival struct {
	timer *time.Timer
}

func (w *implWatcher) schedule(ctx context.Context, patientID string, handler ArrivalHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[patientID]; ok && p.timer.Stop() {
		p.timer.Reset(w.quiet)
		return
	}

	p := &pendingArrival{}
	w.wg.Add(1)
	p.timer = time.AfterFunc(w.quiet, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[patientID] == p {
			delete(w.pending, patientID)
		}
		w.mu.Unlock()

		w.logger.Info(ctx, "New transcript for patient %s", patientID)
		handler(ctx, patientID)
	})
	w.pending[patientID] = p
}

func (w *implWatcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, p := range w.pending {
		if p.timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, id)
	}
}

// Stop closes the file watcher.
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}
