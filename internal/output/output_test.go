package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jwulff/chartnote/internal/api"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/dialogue"
)

func TestDialogue(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).Dialogue([]dialogue.Turn{
		{Speaker: dialogue.Clinician, Text: "어디가 불편하세요?"},
		{Speaker: dialogue.Patient, Text: "목이 아파요."},
	})

	want := "2 turns detected\n\n의사: 어디가 불편하세요?\n환자: 목이 아파요.\n"
	if got := buf.String(); got != want {
		t.Errorf("Dialogue = %q, want %q", got, want)
	}
}

func TestDialogueEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).Dialogue(nil)
	if got := buf.String(); got != "No speaker turns detected\n" {
		t.Errorf("Dialogue(nil) = %q", got)
	}
}

func TestSOAP(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).SOAP(consult.Summary{Subjective: "s", Objective: "o", Assessment: "a", Plan: "p"})

	got := buf.String()
	for _, want := range []string{"S (Subjective)\ns\n", "O (Objective)\no\n", "A (Assessment)\na\n", "P (Plan)\np\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("SOAP output missing %q in %q", want, got)
		}
	}
}

func TestSessionEvent(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).SessionEvent(api.SessionView{
		PatientID:  "P001",
		State:      "Summarized",
		Transcript: &consult.Transcript{ID: "t1", DurationSeconds: 245},
		Dialogue:   []dialogue.Turn{{}, {}, {}},
	})

	want := "[P001] Summarized  transcript t1 4:05  3 turns\n"
	if got := buf.String(); got != want {
		t.Errorf("SessionEvent = %q, want %q", got, want)
	}
}

func TestSetupCheck(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	f.SetupCheck("Roster", true, "demo")
	f.SetupCheck("Gemini API key", false, "not set")

	want := "  ✅ Roster: demo\n  ❌ Gemini API key: not set\n"
	if got := buf.String(); got != want {
		t.Errorf("SetupCheck = %q, want %q", got, want)
	}
}
