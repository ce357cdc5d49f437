package summarize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jwulff/chartnote/internal/consult"
)

// ErrMalformedNote is returned when a model reply is not a usable SOAP note.
var ErrMalformedNote = errors.New("malformed SOAP note")

const systemPrompt = `You are a clinical documentation assistant. Given a doctor-patient consultation transcript, write a SOAP note in the same language as the transcript.

Reply with a single JSON object and nothing else:
{"subjective": "...", "objective": "...", "assessment": "...", "plan": "..."}

- subjective: the patient's complaints, history and symptoms in their own account
- objective: measurable findings, vital signs and examination results mentioned
- assessment: the clinician's working diagnosis or differential
- plan: numbered next steps (tests, prescriptions, follow-up), one per line

If the transcript does not mention something, say so briefly rather than inventing it.`

const userPrompt = "Consultation transcript:\n---\n%s\n---"

type soapFields struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// ParseSOAP extracts the four SOAP sections from a model reply. The reply
// may wrap the JSON object in a markdown code fence or surrounding prose.
func ParseSOAP(reply string) (consult.Summary, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return consult.Summary{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedNote)
	}

	var f soapFields
	if err := json.Unmarshal([]byte(reply[start:end+1]), &f); err != nil {
		return consult.Summary{}, fmt.Errorf("%w: %v", ErrMalformedNote, err)
	}

	s := consult.Summary{
		Subjective: strings.TrimSpace(f.Subjective),
		Objective:  strings.TrimSpace(f.Objective),
		Assessment: strings.TrimSpace(f.Assessment),
		Plan:       strings.TrimSpace(f.Plan),
	}
	var missing []string
	for _, sec := range []struct{ name, text string }{
		{"subjective", s.Subjective},
		{"objective", s.Objective},
		{"assessment", s.Assessment},
		{"plan", s.Plan},
	} {
		if sec.text == "" {
			missing = append(missing, sec.name)
		}
	}
	if len(missing) > 0 {
		return consult.Summary{}, fmt.Errorf("%w: missing %s", ErrMalformedNote, strings.Join(missing, ", "))
	}
	return s, nil
}
