package consult

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an intent is not allowed in the
	// current state. It is always wrapped in a *TransitionError.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrEmptyEdit rejects a saved edit whose text is empty or whitespace.
	ErrEmptyEdit = errors.New("transcript text must not be empty")

	ErrUnknownPatient = errors.New("unknown patient")
	ErrNoSession      = errors.New("no open session")
	ErrSessionClosed  = errors.New("session closed")
)

// TransitionError records which intent was rejected and from which state.
type TransitionError struct {
	Op   string
	From State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// GenerationError is a failed summarization. The session stays usable and
// the user may retry.
type GenerationError struct {
	TranscriptID string
	Err          error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate summary for transcript %s: %v", e.TranscriptID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// TranscriptionError is a failed transcript seed.
type TranscriptionError struct {
	PatientID string
	Err       error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe consultation for patient %s: %v", e.PatientID, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a validation failure rather than a
// rejected transition or backend error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyEdit)
}
