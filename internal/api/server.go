package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
	"github.com/jwulff/chartnote/internal/logger"
)

// Roster lists every patient.
type Roster interface {
	Patients() ([]db.Patient, error)
}

// Server routes HTTP requests to the session registry.
type Server struct {
	registry *consult.Registry
	roster   Roster
	logger   logger.Logger
	router   *mux.Router
}

// NewServer wires the routes.
func NewServer(registry *consult.Registry, roster Roster, log logger.Logger) *Server {
	s := &Server{
		registry: registry,
		roster:   roster,
		logger:   log,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(LoggingMiddleware(s.logger))

	s.router.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	s.router.HandleFunc("/patients", s.listPatients).Methods(http.MethodGet)
	s.router.HandleFunc("/patients/{id}/session", s.openSession).Methods(http.MethodPost)
	s.router.HandleFunc("/patients/{id}/session", s.getSession).Methods(http.MethodGet)
	s.router.HandleFunc("/patients/{id}/session", s.closeSession).Methods(http.MethodDelete)
	s.router.HandleFunc("/patients/{id}/session/events", s.streamEvents).Methods(http.MethodGet)
	s.router.HandleFunc("/patients/{id}/session/{intent}", s.applyIntent).Methods(http.MethodPost)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info(ctx, "API listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info(ctx, "API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) listPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := s.roster.Patients()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	stats := db.Stats(patients)
	filtered := db.Filter(patients, r.URL.Query().Get("q"))

	resp := RosterResponse{
		Patients:      make([]PatientView, 0, len(filtered)),
		TotalPatients: stats.Patients,
		Consultations: stats.Consultations,
	}
	for _, p := range filtered {
		resp.Patients = append(resp.Patients, NewPatientView(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	sess, created, err := s.registry.Open(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, NewSessionView(sess.Snapshot()))
}

// getSession returns the session. With ?wait=true it first blocks until the
// session has nothing pending or the request is cancelled.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		v, err := consult.WaitSettled(r.Context(), sess)
		if err != nil && !errors.Is(err, consult.ErrSessionClosed) {
			writeError(w, http.StatusRequestTimeout, err)
			return
		}
		writeJSON(w, http.StatusOK, NewSessionView(v))
		return
	}
	writeJSON(w, http.StatusOK, NewSessionView(sess.Snapshot()))
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Close(mux.Vars(r)["id"]); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyIntent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := s.registry.Get(vars["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	var req IntentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch vars["intent"] {
	case IntentEdit:
		err = sess.BeginEdit()
	case IntentSave:
		err = sess.SaveEdit(req.Text)
	case IntentCancel:
		err = sess.CancelEdit()
	case IntentRetry:
		err = sess.Retry()
	case IntentReset:
		err = sess.Reset()
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown intent %q", vars["intent"]))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, NewSessionView(sess.Snapshot()))
}

// streamEvents writes the current view, then one line per change until the
// session closes or the client goes away.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	changes, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	send := func() bool {
		if err := enc.Encode(NewSessionView(sess.Snapshot())); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if !send() {
				return
			}
		}
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case consult.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, consult.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, consult.ErrUnknownPatient), errors.Is(err, consult.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, consult.ErrSessionClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// decodeJSON reads an optional JSON body. An empty body leaves dest untouched.
func decodeJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}
