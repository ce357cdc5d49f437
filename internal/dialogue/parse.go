// Package dialogue recovers speaker turns from loosely formatted consultation
// transcripts.
package dialogue

import (
	"fmt"
	"regexp"
	"strings"
)

// Speaker identifies who said a turn.
type Speaker int

const (
	Clinician Speaker = iota
	Patient
)

func (s Speaker) String() string {
	if s == Clinician {
		return "Clinician"
	}
	return "Patient"
}

// Label is the display name used in the dashboard.
func (s Speaker) Label() string {
	if s == Clinician {
		return "의사"
	}
	return "환자"
}

// MarshalText lets turns serialize as "Clinician"/"Patient".
func (s Speaker) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *Speaker) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Clinician":
		*s = Clinician
	case "Patient":
		*s = Patient
	default:
		return fmt.Errorf("unknown speaker %q", b)
	}
	return nil
}

// Turn is one attributed utterance.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// The label must be the whole prefix up to the colon and content must be non-empty.
var reLabel = regexp.MustCompile(`(?i)^(사람[12]|의사|환자|doctor|patient|speaker[12]|person[12])[\s\p{Zs}]*[:：][\s\p{Zs}]*(.+)$`)

// Parse splits text into speaker turns. It never fails: lines without a
// recognized label are appended to the previous turn, or dropped when no turn
// exists yet.
func Parse(text string) []Turn {
	var turns []Turn

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := reLabel.FindStringSubmatch(trimmed); m != nil {
			turns = append(turns, Turn{
				Speaker: speakerFor(m[1]),
				Text:    strings.TrimSpace(m[2]),
			})
			continue
		}

		if len(turns) > 0 {
			last := len(turns) - 1
			turns[last].Text += " " + trimmed
		}
	}

	return turns
}

// speakerFor maps a matched label. "의사" and "doctor" are clinicians even
// without a digit; every other label without "1" is the patient.
func speakerFor(label string) Speaker {
	l := strings.ToLower(label)
	if strings.Contains(l, "1") || strings.Contains(l, "의사") || strings.Contains(l, "doctor") {
		return Clinician
	}
	return Patient
}
