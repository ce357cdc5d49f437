package consult

import (
	"context"
	"sync"

	"github.com/jwulff/chartnote/internal/db"
	"github.com/jwulff/chartnote/internal/dialogue"
)

// View is a consistent, read-only projection of a session.
type View struct {
	PatientID    string
	PatientName  string
	State        State
	Transcript   *Transcript
	Summary      *Summary
	Dialogue     []dialogue.Turn
	EditBuffer   string
	Transcribing bool
	Err          error
}

// Pending reports whether the session will change on its own: a transcript
// is being seeded, or a summary is scheduled or in flight.
func (v View) Pending() bool {
	return v.Transcribing || v.State == StateReady || v.State.Generating()
}

// CanEdit reports whether BeginEdit would be accepted.
func (v View) CanEdit() bool {
	return v.State == StateSummarized || (v.State == StateFailed && v.Transcript != nil)
}

// Session is one patient's active consultation. It seeds the transcript from
// the transcription service and routes user intents to its Workflow.
type Session struct {
	patient     db.Patient
	transcriber Transcriber
	wf          *Workflow
	opts        Options

	ctx    context.Context
	cancel context.CancelFunc

	// seedMu orders seed completion against direct loads and resets.
	seedMu sync.Mutex

	mu           sync.Mutex
	transcribing bool
	seedErr      error
	seedGen      uint64
	subs         map[int]chan struct{}
	nextSub      int
	closed       bool
}

// NewSession creates a session for patient. It starts empty; call Seed to
// fetch the transcript.
func NewSession(patient db.Patient, t Transcriber, s Summarizer, opts Options) *Session {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		patient:     patient,
		transcriber: t,
		wf:          NewWorkflow(s, opts),
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
		subs:        make(map[int]chan struct{}),
	}
	sess.wf.OnChange(sess.broadcast)
	return sess
}

// Patient returns the patient this session belongs to.
func (s *Session) Patient() db.Patient { return s.patient }

// Seed starts transcription in the background. The transcription runs for
// the session's lifetime and is abandoned when the session closes. Seeding
// while a transcription is already running is a no-op.
func (s *Session) Seed() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.transcribing {
		s.mu.Unlock()
		return nil
	}
	s.transcribing = true
	s.seedErr = nil
	s.seedGen++
	gen := s.seedGen
	s.mu.Unlock()

	s.opts.Logger.Info(s.ctx, "transcribing consultation for patient %s", s.patient.ID)
	go s.transcribe(gen)
	s.broadcast()
	return nil
}

func (s *Session) transcribe(gen uint64) {
	t, err := s.transcriber.Transcribe(s.ctx, s.patient)

	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	s.mu.Lock()
	stale := s.closed || gen != s.seedGen
	s.mu.Unlock()
	if stale {
		s.opts.Logger.Debug(s.ctx, "discarding stale transcription for patient %s", s.patient.ID)
		return
	}

	// Load before clearing transcribing so the session never looks settled
	// in between.
	if err == nil {
		if lerr := s.wf.LoadTranscript(t); lerr != nil {
			s.opts.Logger.Warn(s.ctx, "seeded transcript for patient %s not loaded: %v", s.patient.ID, lerr)
		}
	} else {
		s.opts.Logger.Warn(s.ctx, "transcription failed for patient %s: %v", s.patient.ID, err)
	}

	s.mu.Lock()
	s.transcribing = false
	if err != nil {
		s.seedErr = &TranscriptionError{PatientID: s.patient.ID, Err: err}
	}
	s.mu.Unlock()
	s.broadcast()
}

// LoadTranscript installs t directly, superseding any running transcription.
func (s *Session) LoadTranscript(t Transcript) error {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	if err := s.abandonSeed(); err != nil {
		return err
	}
	return s.wf.LoadTranscript(t)
}

// BeginEdit opens the transcript for editing.
func (s *Session) BeginEdit() error { return s.wf.BeginEdit() }

// SaveEdit replaces the transcript with text and regenerates the summary.
func (s *Session) SaveEdit(text string) error { return s.wf.SaveEdit(text) }

// CancelEdit discards the edit buffer.
func (s *Session) CancelEdit() error { return s.wf.CancelEdit() }

// Retry re-runs whatever failed last: the transcription when there is no
// transcript yet, otherwise the summary generation.
func (s *Session) Retry() error {
	if s.wf.Snapshot().State == StateEmpty {
		return s.Seed()
	}
	return s.wf.GenerateSummary()
}

// Reset starts a new consultation: everything is discarded and a fresh
// transcript is seeded.
func (s *Session) Reset() error {
	s.seedMu.Lock()
	err := s.abandonSeed()
	if err == nil {
		err = s.wf.Reset()
	}
	s.seedMu.Unlock()
	if err != nil {
		return err
	}
	return s.Seed()
}

func (s *Session) abandonSeed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.seedGen++
	s.transcribing = false
	s.seedErr = nil
	return nil
}

// CurrentDialogue returns the dialogue parsed from the current transcript.
func (s *Session) CurrentDialogue() []dialogue.Turn { return s.wf.Snapshot().Dialogue }

// CurrentSummary returns the current summary, or nil.
func (s *Session) CurrentSummary() *Summary { return s.wf.Snapshot().Summary }

// CurrentState returns the workflow state.
func (s *Session) CurrentState() State { return s.wf.Snapshot().State }

// Snapshot returns the full view of the session.
func (s *Session) Snapshot() View {
	snap := s.wf.Snapshot()

	s.mu.Lock()
	transcribing, seedErr := s.transcribing, s.seedErr
	s.mu.Unlock()

	v := View{
		PatientID:    s.patient.ID,
		PatientName:  s.patient.Name,
		State:        snap.State,
		Transcript:   snap.Transcript,
		Summary:      snap.Summary,
		Dialogue:     snap.Dialogue,
		EditBuffer:   snap.EditBuffer,
		Transcribing: transcribing,
		Err:          snap.Err,
	}
	if seedErr != nil {
		v.Err = seedErr
	}
	return v
}

// Subscribe returns a channel that receives a value after every change.
// Notifications coalesce: a slow reader sees one pending signal, not a
// backlog. The channel is closed when the session closes or unsubscribe is
// called.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Session) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close tears the session down. Pending timers and calls are abandoned and
// subscribers are released.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	s.cancel()
	s.wf.Close()
	s.opts.Logger.Info(s.ctx, "consultation for patient %s closed", s.patient.ID)
}
