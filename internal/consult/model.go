// Package consult owns the per-patient consultation session: the transcript,
// the dialogue derived from it, the SOAP summary and the workflow that moves a
// transcript through summarization, editing and re-summarization.
package consult

import (
	"fmt"
	"time"
)

// Transcript is an immutable consultation transcript. Edits and regenerations
// produce a new Transcript rather than changing an existing one.
type Transcript struct {
	ID              string    `json:"id"`
	SourceLabel     string    `json:"sourceLabel"`
	Text            string    `json:"text"`
	DurationSeconds int       `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Duration formats DurationSeconds as m:ss.
func (t Transcript) Duration() string {
	if t.DurationSeconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", t.DurationSeconds/60, t.DurationSeconds%60)
}

// Summary is a four part SOAP note generated from one transcript.
type Summary struct {
	ID                 string    `json:"id"`
	Subjective         string    `json:"subjective"`
	Objective          string    `json:"objective"`
	Assessment         string    `json:"assessment"`
	Plan               string    `json:"plan"`
	CreatedAt          time.Time `json:"createdAt"`
	SourceTranscriptID string    `json:"sourceTranscriptId"`
}

// State is the summary workflow state.
type State int

const (
	StateEmpty State = iota
	StateReady
	StateSummarizing
	StateSummarized
	StateEditing
	StateRegenerating
	StateFailed
)

var stateNames = map[State]string{
	StateEmpty:        "Empty",
	StateReady:        "Ready",
	StateSummarizing:  "Summarizing",
	StateSummarized:   "Summarized",
	StateEditing:      "Editing",
	StateRegenerating: "Regenerating",
	StateFailed:       "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Generating reports whether a summarization call is in flight in this state.
func (s State) Generating() bool {
	return s == StateSummarizing || s == StateRegenerating
}
