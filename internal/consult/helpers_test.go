package consult

import (
	"context"
	"testing"
	"time"

	"github.com/jwulff/chartnote/internal/db"
)

const waitTimeout = 2 * time.Second

type result struct {
	s   Summary
	err error
}

// pendingCall is one Summarize call waiting for the test to answer it.
type pendingCall struct {
	t     Transcript
	reply chan result
}

func (c *pendingCall) succeed(subjective string) {
	c.reply <- result{s: Summary{Subjective: subjective, Objective: "o", Assessment: "a", Plan: "p"}}
}

func (c *pendingCall) fail(err error) {
	c.reply <- result{err: err}
}

// fakeSummarizer blocks every call until the test answers it.
type fakeSummarizer struct {
	calls chan *pendingCall
}

func newFakeSummarizer() *fakeSummarizer {
	return &fakeSummarizer{calls: make(chan *pendingCall, 16)}
}

func (f *fakeSummarizer) Summarize(ctx context.Context, t Transcript) (Summary, error) {
	c := &pendingCall{t: t, reply: make(chan result, 1)}
	f.calls <- c
	select {
	case r := <-c.reply:
		return r.s, r.err
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}

func (f *fakeSummarizer) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a Summarize call")
		return nil
	}
}

func (f *fakeSummarizer) expectNoCall(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected Summarize call for transcript %s", c.t.ID)
	case <-time.After(d):
	}
}

type summarizerFunc func(ctx context.Context, t Transcript) (Summary, error)

func (f summarizerFunc) Summarize(ctx context.Context, t Transcript) (Summary, error) {
	return f(ctx, t)
}

type transcriberFunc func(ctx context.Context, p db.Patient) (Transcript, error)

func (f transcriberFunc) Transcribe(ctx context.Context, p db.Patient) (Transcript, error) {
	return f(ctx, p)
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", desc)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitState(t *testing.T, w *Workflow, want State) Snapshot {
	t.Helper()
	waitFor(t, "state "+want.String(), func() bool { return w.Snapshot().State == want })
	return w.Snapshot()
}

func transcript(id, text string) Transcript {
	return Transcript{
		ID:              id,
		SourceLabel:     "visit.mp3",
		Text:            text,
		DurationSeconds: 185,
		CreatedAt:       time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC),
	}
}
