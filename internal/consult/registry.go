package consult

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jwulff/chartnote/internal/db"
)

// Registry holds the open sessions, at most one per patient. Sessions for
// different patients share nothing but the services they were built with.
type Registry struct {
	roster      Roster
	transcriber Transcriber
	summarizer  Summarizer
	opts        Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry. The roster is the only source of
// patients; there is no ambient patient data.
func NewRegistry(roster Roster, t Transcriber, s Summarizer, opts Options) *Registry {
	return &Registry{
		roster:      roster,
		transcriber: t,
		summarizer:  s,
		opts:        opts.withDefaults(),
		sessions:    make(map[string]*Session),
	}
}

// Open returns the patient's session, creating and seeding it if none is
// open. The bool reports whether a new session was created.
func (r *Registry) Open(patientID string) (*Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[patientID]; ok {
		return sess, false, nil
	}

	patient, err := r.roster.Patient(patientID)
	if errors.Is(err, db.ErrPatientNotFound) {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownPatient, patientID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("look up patient %s: %w", patientID, err)
	}

	sess := NewSession(patient, r.transcriber, r.summarizer, r.opts)
	if err := sess.Seed(); err != nil {
		sess.Close()
		return nil, false, err
	}
	r.sessions[patientID] = sess
	return sess, true, nil
}

// Get returns the open session for patientID.
func (r *Registry) Get(patientID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[patientID]
	if !ok {
		return nil, fmt.Errorf("%w for patient %s", ErrNoSession, patientID)
	}
	return sess, nil
}

// OpenIDs returns the patient ids with an open session, sorted.
func (r *Registry) OpenIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close discards the patient's session.
func (r *Registry) Close(patientID string) error {
	r.mu.Lock()
	sess, ok := r.sessions[patientID]
	delete(r.sessions, patientID)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w for patient %s", ErrNoSession, patientID)
	}
	sess.Close()
	return nil
}

// CloseAll discards every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
