// Package db provides SQLite access to the patient roster.
package db

import "time"

// Patient is one roster entry.
type Patient struct {
	ID                string
	Name              string
	Age               int
	Gender            string
	Phone             string
	Email             string
	LastConsultation  *time.Time
	ConsultationCount int
	Conditions        []string
	Consultations     []Consultation
}

// Consultation is a past consultation record.
type Consultation struct {
	ID        string
	PatientID string
	Date      time.Time
	Status    string
	Duration  string
}

// Tier groups patients by how often they have been seen.
type Tier int

const (
	TierNew Tier = iota
	TierManaged
	TierRegular
)

func (t Tier) String() string {
	switch t {
	case TierRegular:
		return "regular"
	case TierManaged:
		return "managed"
	default:
		return "new"
	}
}

// Label is the badge text shown on the roster.
func (t Tier) Label() string {
	switch t {
	case TierRegular:
		return "정기 환자"
	case TierManaged:
		return "관리 중"
	default:
		return "신규 환자"
	}
}

// Tier classifies the patient by consultation count.
func (p Patient) Tier() Tier {
	switch {
	case p.ConsultationCount >= 5:
		return TierRegular
	case p.ConsultationCount >= 2:
		return TierManaged
	default:
		return TierNew
	}
}
