package consult

import (
	"context"

	"github.com/jwulff/chartnote/internal/db"
)

// Summarizer turns a transcript into a SOAP summary. Implementations must be
// safe to call repeatedly for the same transcript.
type Summarizer interface {
	Summarize(ctx context.Context, t Transcript) (Summary, error)
}

// Transcriber produces the consultation transcript for a patient.
type Transcriber interface {
	Transcribe(ctx context.Context, p db.Patient) (Transcript, error)
}

// Roster looks up patients by id.
type Roster interface {
	Patient(id string) (db.Patient, error)
}
