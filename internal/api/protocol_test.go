package api

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
)

func TestNewSessionViewErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{&consult.TranscriptionError{PatientID: "P1", Err: errors.New("mic")}, "transcription"},
		{&consult.GenerationError{TranscriptID: "t1", Err: errors.New("quota")}, "generation"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		v := NewSessionView(consult.View{State: consult.StateFailed, Err: tt.err})
		if v.ErrorKind != tt.kind {
			t.Errorf("ErrorKind = %q, want %q", v.ErrorKind, tt.kind)
		}
		if v.Error == "" {
			t.Error("Error empty")
		}
	}
}

func TestSessionViewEmptyDialogueIsArray(t *testing.T) {
	data, err := json.Marshal(NewSessionView(consult.View{PatientID: "P1"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if d, ok := raw["dialogue"].([]any); !ok || len(d) != 0 {
		t.Errorf("dialogue = %v, want []", raw["dialogue"])
	}
	if _, ok := raw["summary"]; ok {
		t.Error("summary should be omitted when absent")
	}
	if raw["state"] != "Empty" {
		t.Errorf("state = %v, want Empty", raw["state"])
	}
}

func TestNewPatientView(t *testing.T) {
	last := time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)
	v := NewPatientView(db.Patient{ID: "P005", Name: "정미선", ConsultationCount: 4, LastConsultation: &last})
	if v.Tier != "managed" {
		t.Errorf("Tier = %q, want managed", v.Tier)
	}
	if v.LastConsultation != "2024-01-21" {
		t.Errorf("LastConsultation = %q", v.LastConsultation)
	}
	if v.Conditions == nil {
		t.Error("Conditions should be an empty slice, not nil")
	}
}
