package db

import "strings"

// Filter returns the patients whose name or any recent condition contains
// term, ignoring case. An empty term matches everyone.
func Filter(patients []Patient, term string) []Patient {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return patients
	}

	var out []Patient
	for _, p := range patients {
		if matches(p, term) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Patient, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	for _, c := range p.Conditions {
		if strings.Contains(strings.ToLower(c), term) {
			return true
		}
	}
	return false
}

// RosterStats are the dashboard header counters.
type RosterStats struct {
	Patients      int
	Consultations int
}

// Stats totals the roster.
func Stats(patients []Patient) RosterStats {
	st := RosterStats{Patients: len(patients)}
	for _, p := range patients {
		st.Consultations += p.ConsultationCount
	}
	return st
}
