package db

import "testing"

func demoPatients(t *testing.T) []Patient {
	t.Helper()
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	patients, err := store.Patients()
	if err != nil {
		t.Fatalf("Patients: %v", err)
	}
	return patients
}

func TestFilter(t *testing.T) {
	patients := demoPatients(t)

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"P001", "P002", "P003", "P004", "P005"}},
		{"   ", []string{"P001", "P002", "P003", "P004", "P005"}},
		{"김영희", []string{"P001"}},
		{"혈압", []string{"P001", "P002"}},
		{"염", []string{"P004", "P005"}},
		{"없는환자", nil},
	}

	for _, tt := range tests {
		got := Filter(patients, tt.term)
		if len(got) != len(tt.want) {
			t.Errorf("Filter(%q) = %d patients, want %d", tt.term, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("Filter(%q)[%d] = %s, want %s", tt.term, i, got[i].ID, tt.want[i])
			}
		}
	}
}

func TestFilterIgnoresCase(t *testing.T) {
	patients := []Patient{{ID: "X", Name: "Jane Doe", Conditions: []string{"Asthma"}}}

	if got := Filter(patients, "ASTH"); len(got) != 1 {
		t.Errorf("Filter by condition = %d, want 1", len(got))
	}
	if got := Filter(patients, "jane"); len(got) != 1 {
		t.Errorf("Filter by name = %d, want 1", len(got))
	}
}

func TestStats(t *testing.T) {
	st := Stats(demoPatients(t))
	if st.Patients != 5 {
		t.Errorf("Patients = %d, want 5", st.Patients)
	}
	if st.Consultations != 15 {
		t.Errorf("Consultations = %d, want 15", st.Consultations)
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		count int
		want  Tier
		label string
	}{
		{0, TierNew, "신규 환자"},
		{1, TierNew, "신규 환자"},
		{2, TierManaged, "관리 중"},
		{4, TierManaged, "관리 중"},
		{5, TierRegular, "정기 환자"},
		{12, TierRegular, "정기 환자"},
	}

	for _, tt := range tests {
		p := Patient{ConsultationCount: tt.count}
		if got := p.Tier(); got != tt.want {
			t.Errorf("Tier(%d) = %v, want %v", tt.count, got, tt.want)
		}
		if got := p.Tier().Label(); got != tt.label {
			t.Errorf("Tier(%d).Label() = %q, want %q", tt.count, got, tt.label)
		}
	}
}
