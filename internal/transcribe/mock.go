package transcribe

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
)

// Mock stands in for speech-to-text: after a random delay it returns one of
// the sample consultations, labelled as a recording of the patient's visit.
type Mock struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Now      func() time.Time
}

func (m *Mock) Transcribe(ctx context.Context, p db.Patient) (consult.Transcript, error) {
	if err := sleep(ctx, jitter(m.MinDelay, m.MaxDelay)); err != nil {
		return consult.Transcript{}, err
	}

	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}

	return consult.Transcript{
		ID:              uuid.NewString(),
		SourceLabel:     fmt.Sprintf("%s_상담_%s.mp3", p.Name, now.Format("2006-01-02")),
		Text:            sampleConsultations[rand.IntN(len(sampleConsultations))],
		DurationSeconds: 180 + rand.IntN(300),
		CreatedAt:       now,
	}, nil
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
