package consult

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwulff/chartnote/internal/dialogue"
	"github.com/jwulff/chartnote/internal/logger"
)

// Options tunes a Workflow. Zero values get defaults.
type Options struct {
	// SettleDelay is how long after LoadTranscript the first summarization
	// starts on its own.
	SettleDelay time.Duration
	Now         func() time.Time
	NewID       func() string
	Logger      logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	return o
}

// Workflow is the summary state machine for one consultation. Every
// transition runs under a single lock, so transitions never interleave.
// Summarization runs on its own goroutine and its result is applied only if
// it still belongs to the current transcript and the latest generation.
type Workflow struct {
	summarizer Summarizer
	opts       Options
	ctx        context.Context
	cancel     context.CancelFunc

	mu         sync.Mutex
	state      State
	transcript *Transcript
	summary    *Summary
	turns      []dialogue.Turn
	editBuf    string
	editFrom   State
	failedFrom State
	lastErr    error
	generation uint64
	inFlight   int
	settle     *time.Timer
	closed     bool
	onChange   func()
}

// NewWorkflow returns a workflow in StateEmpty.
func NewWorkflow(s Summarizer, opts Options) *Workflow {
	ctx, cancel := context.WithCancel(context.Background())
	return &Workflow{
		summarizer: s,
		opts:       opts.withDefaults(),
		ctx:        ctx,
		cancel:     cancel,
		state:      StateEmpty,
	}
}

// OnChange registers fn to run after every applied transition. fn runs
// outside the workflow lock and may call Snapshot.
func (w *Workflow) OnChange(fn func()) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// LoadTranscript installs the first transcript and schedules the automatic
// summarization after the settle delay.
func (w *Workflow) LoadTranscript(t Transcript) error {
	return w.apply("loadTranscript", func() error {
		if w.state != StateEmpty {
			return &TransitionError{Op: "loadTranscript", From: w.state}
		}
		w.setTranscript(t)
		w.lastErr = nil
		w.state = StateReady

		id := t.ID
		w.settle = time.AfterFunc(w.opts.SettleDelay, func() { w.autoGenerate(id) })
		w.opts.Logger.Debug(w.ctx, "transcript %s loaded, summarizing in %s", id, w.opts.SettleDelay)
		return nil
	})
}

// GenerateSummary starts a summarization of the current transcript. It is
// valid from Ready and, as a retry, from Failed. From Ready it moves to
// Summarizing. A retry resumes the generating state that failed, so a failed
// regeneration after an edit retries as Regenerating.
func (w *Workflow) GenerateSummary() error {
	return w.apply("generateSummary", func() error {
		switch w.state {
		case StateReady:
			w.startGeneration(StateSummarizing)
		case StateFailed:
			w.startGeneration(w.failedFrom)
		default:
			return &TransitionError{Op: "generateSummary", From: w.state}
		}
		return nil
	})
}

// BeginEdit opens an edit buffer seeded with the transcript text. The current
// summary stays visible while editing. Editing from Failed lets the user fix
// the transcript instead of retrying it unchanged.
func (w *Workflow) BeginEdit() error {
	return w.apply("beginEdit", func() error {
		if w.state != StateSummarized && !(w.state == StateFailed && w.transcript != nil) {
			return &TransitionError{Op: "beginEdit", From: w.state}
		}
		w.editFrom = w.state
		w.editBuf = w.transcript.Text
		w.state = StateEditing
		return nil
	})
}

// CancelEdit drops the edit buffer and returns to the state editing began in.
func (w *Workflow) CancelEdit() error {
	return w.apply("cancelEdit", func() error {
		if w.state != StateEditing {
			return &TransitionError{Op: "cancelEdit", From: w.state}
		}
		w.editBuf = ""
		w.state = w.editFrom
		return nil
	})
}

// SaveEdit replaces the transcript with newText and regenerates the summary
// immediately. Empty text is rejected with ErrEmptyEdit and changes nothing.
func (w *Workflow) SaveEdit(newText string) error {
	return w.apply("saveEdit", func() error {
		if w.state != StateEditing {
			return &TransitionError{Op: "saveEdit", From: w.state}
		}
		text := strings.TrimSpace(newText)
		if text == "" {
			return ErrEmptyEdit
		}

		prev := w.transcript
		w.setTranscript(Transcript{
			ID:              w.opts.NewID(),
			SourceLabel:     prev.SourceLabel,
			Text:            text,
			DurationSeconds: prev.DurationSeconds,
			CreatedAt:       w.opts.Now(),
		})
		w.summary = nil
		w.editBuf = ""
		w.startGeneration(StateRegenerating)
		return nil
	})
}

// Reset discards everything and returns to Empty. Any in-flight generation
// becomes stale.
func (w *Workflow) Reset() error {
	return w.apply("reset", func() error {
		w.stopSettle()
		w.generation++
		w.state = StateEmpty
		w.transcript = nil
		w.summary = nil
		w.turns = nil
		w.editBuf = ""
		w.lastErr = nil
		return nil
	})
}

// Close tears the workflow down: the settle timer is stopped, the context
// handed to the summarizer is cancelled and late results are ignored.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.stopSettle()
	w.cancel()
}

// Snapshot is a consistent copy of the workflow's state.
type Snapshot struct {
	State      State
	Transcript *Transcript
	Summary    *Summary
	Dialogue   []dialogue.Turn
	EditBuffer string
	InFlight   int
	Err        error
}

// Snapshot returns a copy safe to read without further locking.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		State:      w.state,
		EditBuffer: w.editBuf,
		InFlight:   w.inFlight,
		Err:        w.lastErr,
	}
	if w.transcript != nil {
		t := *w.transcript
		snap.Transcript = &t
	}
	if w.summary != nil {
		s := *w.summary
		snap.Summary = &s
	}
	if w.turns != nil {
		snap.Dialogue = append([]dialogue.Turn(nil), w.turns...)
	}
	return snap
}

// apply runs fn under the lock and notifies listeners if fn succeeded.
func (w *Workflow) apply(op string, fn func() error) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrSessionClosed
	}
	from := w.state
	err := fn()
	to := w.state
	notify := w.onChange
	w.mu.Unlock()

	if err != nil {
		w.opts.Logger.Debug(w.ctx, "%s rejected in %s: %v", op, from, err)
		return err
	}
	w.opts.Logger.Debug(w.ctx, "%s: %s -> %s", op, from, to)
	if notify != nil {
		notify()
	}
	return nil
}

// setTranscript replaces the transcript and the dialogue derived from it in
// one step. Callers hold the lock.
func (w *Workflow) setTranscript(t Transcript) {
	w.transcript = &t
	w.turns = dialogue.Parse(t.Text)
}

// startGeneration moves to state and launches the summarizer. Callers hold
// the lock and have checked that a transcript is present.
func (w *Workflow) startGeneration(state State) {
	w.stopSettle()
	w.generation++
	w.state = state
	w.lastErr = nil
	w.inFlight++

	gen := w.generation
	t := *w.transcript
	w.opts.Logger.Info(w.ctx, "summarizing transcript %s (generation %d)", t.ID, gen)
	go w.run(gen, t)
}

func (w *Workflow) run(gen uint64, t Transcript) {
	s, err := w.summarizer.Summarize(w.ctx, t)
	w.complete(gen, t.ID, s, err)
}

// complete applies a finished generation, or drops it when it is stale.
func (w *Workflow) complete(gen uint64, transcriptID string, s Summary, err error) {
	w.mu.Lock()
	w.inFlight--
	if w.closed {
		w.mu.Unlock()
		return
	}
	if gen != w.generation || w.transcript == nil || w.transcript.ID != transcriptID || !w.state.Generating() {
		w.mu.Unlock()
		w.opts.Logger.Debug(w.ctx, "discarding stale summary for transcript %s (generation %d)", transcriptID, gen)
		return
	}

	from := w.state
	if err != nil {
		w.failedFrom = from
		w.state = StateFailed
		w.lastErr = &GenerationError{TranscriptID: transcriptID, Err: err}
		w.opts.Logger.Warn(w.ctx, "summary generation failed for transcript %s: %v", transcriptID, err)
	} else {
		s.SourceTranscriptID = transcriptID
		if s.ID == "" {
			s.ID = w.opts.NewID()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = w.opts.Now()
		}
		w.summary = &s
		w.state = StateSummarized
		w.opts.Logger.Info(w.ctx, "summary %s ready for transcript %s", s.ID, transcriptID)
	}
	notify := w.onChange
	w.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// autoGenerate is the settle timer callback. It only fires the first
// summarization if nothing has happened to the transcript in the meantime.
func (w *Workflow) autoGenerate(transcriptID string) {
	err := w.apply("autoGenerate", func() error {
		if w.state != StateReady || w.transcript == nil || w.transcript.ID != transcriptID {
			return &TransitionError{Op: "autoGenerate", From: w.state}
		}
		w.settle = nil
		w.startGeneration(StateSummarizing)
		return nil
	})
	if err != nil {
		w.opts.Logger.Debug(w.ctx, "automatic summary skipped for transcript %s", transcriptID)
	}
}

func (w *Workflow) stopSettle() {
	if w.settle != nil {
		w.settle.Stop()
		w.settle = nil
	}
}
