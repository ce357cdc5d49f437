package summarize

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/jwulff/chartnote/internal/consult"
)

// Mock returns one of the sample notes after a random delay in
// [MinDelay, MaxDelay]. It ignores the transcript text.
type Mock struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

func (m *Mock) Summarize(ctx context.Context, t consult.Transcript) (consult.Summary, error) {
	if err := sleep(ctx, jitter(m.MinDelay, m.MaxDelay)); err != nil {
		return consult.Summary{}, err
	}
	s := sampleNotes[rand.IntN(len(sampleNotes))]
	s.SourceTranscriptID = t.ID
	return s, nil
}

func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
