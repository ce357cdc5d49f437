// Package api serves consultation sessions over HTTP with JSON bodies and an
// NDJSON change stream, and provides a client for it.
package api

import (
	"errors"

	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
	"github.com/jwulff/chartnote/internal/dialogue"
)

// Intents accepted by POST /patients/{id}/session/{intent}.
const (
	IntentEdit   = "edit"
	IntentSave   = "save"
	IntentCancel = "cancel"
	IntentRetry  = "retry"
	IntentReset  = "reset"
)

// PatientView is a roster entry.
type PatientView struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	Phone             string   `json:"phone,omitempty"`
	Email             string   `json:"email,omitempty"`
	LastConsultation  string   `json:"lastConsultation,omitempty"`
	ConsultationCount int      `json:"consultationCount"`
	Tier              string   `json:"tier"`
	Conditions        []string `json:"conditions"`
}

// RosterResponse is returned by GET /patients.
type RosterResponse struct {
	Patients      []PatientView `json:"patients"`
	TotalPatients int           `json:"totalPatients"`
	Consultations int           `json:"consultations"`
}

// SessionView is one consultation as seen by clients. The event stream
// carries one SessionView per line.
type SessionView struct {
	PatientID    string              `json:"patientId"`
	PatientName  string              `json:"patientName"`
	State        string              `json:"state"`
	Transcribing bool                `json:"transcribing"`
	Pending      bool                `json:"pending"`
	CanEdit      bool                `json:"canEdit"`
	Transcript   *consult.Transcript `json:"transcript,omitempty"`
	Summary      *consult.Summary    `json:"summary,omitempty"`
	Dialogue     []dialogue.Turn     `json:"dialogue"`
	EditBuffer   string              `json:"editBuffer,omitempty"`
	Error        string              `json:"error,omitempty"`
	ErrorKind    string              `json:"errorKind,omitempty"`
}

// IntentRequest is the optional body of an intent. Only save uses Text.
type IntentRequest struct {
	Text string `json:"text,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewPatientView converts a roster entry.
func NewPatientView(p db.Patient) PatientView {
	v := PatientView{
		ID:                p.ID,
		Name:              p.Name,
		Age:               p.Age,
		Gender:            p.Gender,
		Phone:             p.Phone,
		Email:             p.Email,
		ConsultationCount: p.ConsultationCount,
		Tier:              p.Tier().String(),
		Conditions:        p.Conditions,
	}
	if v.Conditions == nil {
		v.Conditions = []string{}
	}
	if p.LastConsultation != nil {
		v.LastConsultation = p.LastConsultation.Format("2006-01-02")
	}
	return v
}

// NewSessionView converts a session projection.
func NewSessionView(v consult.View) SessionView {
	sv := SessionView{
		PatientID:    v.PatientID,
		PatientName:  v.PatientName,
		State:        v.State.String(),
		Transcribing: v.Transcribing,
		Pending:      v.Pending(),
		CanEdit:      v.CanEdit(),
		Transcript:   v.Transcript,
		Summary:      v.Summary,
		Dialogue:     v.Dialogue,
		EditBuffer:   v.EditBuffer,
	}
	if sv.Dialogue == nil {
		sv.Dialogue = []dialogue.Turn{}
	}
	if v.Err != nil {
		sv.Error = v.Err.Error()
		sv.ErrorKind = errorKind(v.Err)
	}
	return sv
}

func errorKind(err error) string {
	var te *consult.TranscriptionError
	var ge *consult.GenerationError
	switch {
	case errors.As(err, &te):
		return "transcription"
	case errors.As(err, &ge):
		return "generation"
	default:
		return "internal"
	}
}
