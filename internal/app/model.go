package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
	"github.com/jwulff/chartnote/internal/export"
	"github.com/jwulff/chartnote/internal/logger"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen is the top-level page shown by the dashboard.
type Screen int

const (
	ScreenRoster Screen = iota
	ScreenConsultation
)

// Options configures the dashboard. Zero values get defaults.
type Options struct {
	// ExportDir is where x writes .docx notes.
	ExportDir string
	// Arrivals delivers patient ids whose transcript landed in the inbox.
	// Nil disables inbox handling.
	Arrivals <-chan string
	Now      func() time.Time
	Logger   logger.Logger
}

// Model is the root bubbletea model for the chartnote dashboard.
type Model struct {
	registry *consult.Registry
	opts     Options

	// Roster
	roster    []db.Patient
	stats     db.RosterStats
	filtered  []db.Patient
	cursor    int
	query     string
	searching bool

	// Consultation
	screen      Screen
	session     *consult.Session
	view        consult.View
	changes     <-chan struct{}
	unsubscribe func()
	showRaw     bool
	editText    string

	// UI state
	width  int
	height int

	// Errors
	errorMessage   string
	errorTransient bool
	notice         string
}

// New creates the dashboard over an explicit roster. Sessions are opened
// through registry.
func New(roster []db.Patient, registry *consult.Registry, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	return Model{
		registry: registry,
		opts:     opts,
		roster:   roster,
		stats:    db.Stats(roster),
		filtered: db.Filter(roster, ""),
		screen:   ScreenRoster,
	}
}

// Init starts listening for inbox arrivals.
func (m Model) Init() tea.Cmd {
	return waitForArrivalCmd(m.opts.Arrivals)
}

// waitForChangeCmd blocks until the session changes or the subscription ends.
func waitForChangeCmd(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return SessionClosedMsg{Changes: changes}
		}
		return SessionChangedMsg{Changes: changes}
	}
}

// waitForArrivalCmd reads the next inbox arrival.
func waitForArrivalCmd(arrivals <-chan string) tea.Cmd {
	if arrivals == nil {
		return nil
	}
	return func() tea.Msg {
		id, ok := <-arrivals
		if !ok {
			return nil
		}
		return ArrivalMsg{PatientID: id}
	}
}

// exportCmd writes the note to dir.
func exportCmd(v consult.View, dir string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		doc, err := export.FromView(v, now)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path := filepath.Join(dir, export.FileName(doc))
		if err := export.WriteSOAP(path, doc); err != nil {
			return ExportDoneMsg{Err: err}
		}
		return ExportDoneMsg{Path: path}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

func clearNoticeCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SessionChangedMsg:
		if m.session == nil || msg.Changes != m.changes {
			return m, nil
		}
		m.refresh()
		// Keep listening on the same subscription.
		return m, waitForChangeCmd(m.changes)

	case SessionClosedMsg:
		if msg.Changes == m.changes && m.session != nil {
			m.leaveSession(false)
		}
		return m, nil

	case ArrivalMsg:
		cmd := m.handleArrival(msg.PatientID)
		return m, tea.Batch(cmd, waitForArrivalCmd(m.opts.Arrivals))

	case ExportDoneMsg:
		if msg.Err != nil {
			return m, m.transientError(msg.Err)
		}
		m.opts.Logger.Info(context.Background(), "exported SOAP note to %s", msg.Path)
		m.notice = "Saved " + msg.Path
		return m, clearNoticeCmd()

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// handleArrival re-seeds an open session that is still waiting for a
// transcript. Sessions that already have one are left alone.
func (m *Model) handleArrival(patientID string) tea.Cmd {
	sess, err := m.registry.Get(patientID)
	if err != nil {
		m.opts.Logger.Debug(context.Background(), "recording for %s arrived with no open consultation", patientID)
		return nil
	}
	v := sess.Snapshot()
	if v.State != consult.StateEmpty || v.Transcribing {
		return nil
	}
	if err := sess.Retry(); err != nil {
		return m.transientError(err)
	}
	m.notice = "Recording arrived for " + patientID
	if sess == m.session {
		m.refresh()
	}
	return clearNoticeCmd()
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		m.leaveSession(true)
		return m, tea.Quit
	}

	switch {
	case m.screen == ScreenRoster && m.searching:
		return m.handleSearchKey(msg)
	case m.screen == ScreenRoster:
		return m.handleRosterKey(msg)
	case m.view.State == consult.StateEditing:
		return m.handleEditKey(msg)
	default:
		return m.handleConsultationKey(msg)
	}
}

func (m Model) handleRosterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper:
		return m, tea.Quit

	case KeySearch:
		m.searching = true
		return m, nil

	case KeyJ, KeyDown:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case KeyEnter:
		if m.cursor >= len(m.filtered) {
			return m, nil
		}
		return m.openSession(m.filtered[m.cursor].ID)

	case KeyEsc:
		if m.query != "" {
			m.setQuery("")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyEsc:
		m.searching = false
		m.setQuery("")
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.setQuery(string(r[:len(r)-1]))
		}
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case tea.KeyRunes, tea.KeySpace:
		m.setQuery(m.query + string(msg.Runes))
	}
	return m, nil
}

func (m Model) handleConsultationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper:
		m.leaveSession(true)
		return m, tea.Quit

	case KeyEsc:
		m.leaveSession(true)
		return m, nil

	case KeyToggleView:
		m.showRaw = !m.showRaw
		return m, nil

	case KeyEdit:
		if !m.view.CanEdit() {
			return m, nil
		}
		if err := m.session.BeginEdit(); err != nil {
			return m, m.transientError(err)
		}
		m.refresh()
		m.editText = m.view.EditBuffer
		return m, nil

	case KeyRetry:
		if m.view.Err == nil {
			return m, nil
		}
		if err := m.session.Retry(); err != nil {
			return m, m.transientError(err)
		}
		m.refresh()
		return m, nil

	case KeyNew:
		if err := m.session.Reset(); err != nil {
			return m, m.transientError(err)
		}
		m.showRaw = false
		m.refresh()
		return m, nil

	case KeyExport:
		if m.view.Summary == nil {
			return m, m.transientError(export.ErrNothingToExport)
		}
		return m, exportCmd(m.view, m.opts.ExportDir, m.opts.Now())
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if err := m.session.CancelEdit(); err != nil {
			return m, m.transientError(err)
		}
		m.editText = ""
		m.refresh()

	case tea.KeyCtrlS:
		if err := m.session.SaveEdit(m.editText); err != nil {
			// Validation errors keep the buffer open for another try.
			return m, m.transientError(err)
		}
		m.editText = ""
		m.refresh()

	case tea.KeyEnter:
		m.editText += "\n"

	case tea.KeyBackspace:
		if r := []rune(m.editText); len(r) > 0 {
			m.editText = string(r[:len(r)-1])
		}

	case tea.KeyRunes, tea.KeySpace:
		m.editText += string(msg.Runes)
	}
	return m, nil
}

// openSession opens or resumes the patient's consultation and subscribes to
// its changes.
func (m Model) openSession(patientID string) (tea.Model, tea.Cmd) {
	sess, _, err := m.registry.Open(patientID)
	if err != nil {
		return m, m.transientError(err)
	}

	m.session = sess
	m.changes, m.unsubscribe = sess.Subscribe()
	m.screen = ScreenConsultation
	m.showRaw = false
	m.editText = ""
	m.refresh()
	m.opts.Logger.Info(context.Background(), "opened consultation for patient %s", patientID)
	return m, waitForChangeCmd(m.changes)
}

// leaveSession returns to the roster. With discard the session is closed.
func (m *Model) leaveSession(discard bool) {
	if m.session == nil {
		return
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if discard {
		if err := m.registry.Close(m.session.Patient().ID); err != nil && !errors.Is(err, consult.ErrNoSession) {
			m.opts.Logger.Warn(context.Background(), "close consultation: %v", err)
		}
	}
	m.session = nil
	m.changes = nil
	m.unsubscribe = nil
	m.view = consult.View{}
	m.editText = ""
	m.screen = ScreenRoster
}

func (m *Model) refresh() {
	if m.session != nil {
		m.view = m.session.Snapshot()
	}
}

func (m *Model) setQuery(q string) {
	m.query = q
	m.filtered = db.Filter(m.roster, q)
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m *Model) transientError(err error) tea.Cmd {
	m.errorMessage = humanError(err)
	m.errorTransient = true
	return clearTransientErrorCmd()
}

// humanError phrases the errors a user can cause from the keyboard.
func humanError(err error) string {
	var te *consult.TransitionError
	switch {
	case consult.IsValidation(err):
		return "Transcript cannot be empty"
	case errors.As(err, &te):
		return fmt.Sprintf("Not available while %s", te.From)
	default:
		return err.Error()
	}
}
