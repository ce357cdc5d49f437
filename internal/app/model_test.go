package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
)

type transcriberFunc func(context.Context, db.Patient) (consult.Transcript, error)

func (f transcriberFunc) Transcribe(ctx context.Context, p db.Patient) (consult.Transcript, error) {
	return f(ctx, p)
}

type summarizerFunc func(context.Context, consult.Transcript) (consult.Summary, error)

func (f summarizerFunc) Summarize(ctx context.Context, t consult.Transcript) (consult.Summary, error) {
	return f(ctx, t)
}

type fixture struct {
	registry       *consult.Registry
	roster         []db.Patient
	failTranscript atomic.Bool
	failSummary    atomic.Bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	roster, err := store.Patients()
	if err != nil {
		t.Fatalf("Patients: %v", err)
	}

	f := &fixture{roster: roster}
	var seq atomic.Int32
	tr := transcriberFunc(func(ctx context.Context, p db.Patient) (consult.Transcript, error) {
		if f.failTranscript.Load() {
			return consult.Transcript{}, errors.New("no recording")
		}
		return consult.Transcript{
			ID:              p.ID + "-" + strconv.Itoa(int(seq.Add(1))),
			SourceLabel:     p.Name + "_상담.mp3",
			Text:            "의사: 어디가 불편하세요?\n환자: 기침이 계속 나요.\n밤에 더 심해요.",
			DurationSeconds: 245,
		}, nil
	})
	sum := summarizerFunc(func(ctx context.Context, tr consult.Transcript) (consult.Summary, error) {
		if f.failSummary.Load() {
			return consult.Summary{}, errors.New("quota exceeded")
		}
		return consult.Summary{Subjective: "기침", Objective: "청진 정상", Assessment: "급성 기관지염", Plan: "진해제"}, nil
	})

	f.registry = consult.NewRegistry(store, tr, sum, consult.Options{SettleDelay: time.Millisecond})
	t.Cleanup(f.registry.CloseAll)
	return f
}

func (f *fixture) model(opts Options) Model {
	m := New(f.roster, f.registry, opts)
	m.width = 120
	m.height = 30
	return m
}

func applyUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case KeyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case KeyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case KeyBackspace:
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case KeySave:
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case KeyUp:
		return tea.KeyMsg{Type: tea.KeyUp}
	case KeyDown:
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		if r == '\n' {
			m, _ = applyUpdate(m, key(KeyEnter))
			continue
		}
		m, _ = applyUpdate(m, key(string(r)))
	}
	return m
}

// settle waits for the open session to settle and delivers the change to
// the model the way waitForChangeCmd would.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := consult.WaitSettled(ctx, m.session); err != nil {
		t.Fatalf("WaitSettled: %v", err)
	}
	m, _ = applyUpdate(m, SessionChangedMsg{Changes: m.changes})
	return m
}

func TestNewModel(t *testing.T) {
	f := newFixture(t)
	m := New(f.roster, f.registry, Options{})

	if m.screen != ScreenRoster {
		t.Error("new model should show the roster")
	}
	if len(m.filtered) != 5 {
		t.Errorf("filtered = %d, want 5", len(m.filtered))
	}
	if m.stats.Consultations != 15 {
		t.Errorf("stats.Consultations = %d, want 15", m.stats.Consultations)
	}
	if m.Init() != nil {
		t.Error("Init without arrivals should return nil")
	}
}

func TestRosterNavigation(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, _ = applyUpdate(m, key(KeyK))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 at top", m.cursor)
	}
	m, _ = applyUpdate(m, key(KeyJ))
	m, _ = applyUpdate(m, key(KeyDown))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	for i := 0; i < 10; i++ {
		m, _ = applyUpdate(m, key(KeyJ))
	}
	if m.cursor != 4 {
		t.Errorf("cursor = %d, want 4 at bottom", m.cursor)
	}
}

func TestRosterSearch(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m.cursor = 4

	m, _ = applyUpdate(m, key(KeySearch))
	if !m.searching {
		t.Fatal("/ should start searching")
	}
	m = typeText(m, "관절")
	if len(m.filtered) != 1 || m.filtered[0].ID != "P005" {
		t.Fatalf("filtered = %+v, want P005", m.filtered)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}

	// j is typed into the query while searching.
	m = typeText(m, "j")
	if m.query != "관절j" || len(m.filtered) != 0 {
		t.Errorf("query = %q filtered = %d", m.query, len(m.filtered))
	}
	m, _ = applyUpdate(m, key(KeyBackspace))
	if m.query != "관절" {
		t.Errorf("query after backspace = %q", m.query)
	}

	m, _ = applyUpdate(m, key(KeyEnter))
	if m.searching || m.query != "관절" {
		t.Errorf("enter should keep the filter: searching=%v query=%q", m.searching, m.query)
	}

	m, _ = applyUpdate(m, key(KeySearch))
	m, _ = applyUpdate(m, key(KeyEsc))
	if m.query != "" || len(m.filtered) != 5 {
		t.Errorf("esc should clear the filter: query=%q filtered=%d", m.query, len(m.filtered))
	}
}

func TestOpenConsultation(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, cmd := applyUpdate(m, key(KeyEnter))
	if m.screen != ScreenConsultation || m.session == nil {
		t.Fatal("enter should open a consultation")
	}
	if cmd == nil {
		t.Error("opening should wait for session changes")
	}
	if m.view.PatientID != "P001" {
		t.Errorf("PatientID = %q, want P001", m.view.PatientID)
	}

	m = settle(t, m)
	if m.view.State != consult.StateSummarized {
		t.Fatalf("state = %s, want Summarized", m.view.State)
	}

	view := m.View()
	for _, want := range []string{"김영희", "2 turns detected", "4:05", "급성 기관지염", "SOAP note ready"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestToggleRawView(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)

	m, _ = applyUpdate(m, key(KeyToggleView))
	if !m.showRaw {
		t.Fatal("v should show the raw transcript")
	}
	if view := m.View(); !strings.Contains(view, "RAW TRANSCRIPT") {
		t.Error("raw view not rendered")
	}
	m, _ = applyUpdate(m, key(KeyToggleView))
	if view := m.View(); !strings.Contains(view, "DIALOGUE") {
		t.Error("dialogue view not rendered")
	}
}

func TestEditAndSave(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)
	oldID := m.view.Transcript.ID

	m, _ = applyUpdate(m, key(KeyEdit))
	if m.view.State != consult.StateEditing {
		t.Fatalf("state = %s, want Editing", m.view.State)
	}
	if m.editText != m.view.Transcript.Text {
		t.Errorf("editText = %q, want transcript text", m.editText)
	}
	if m.view.Summary == nil {
		t.Error("summary should stay visible while editing")
	}

	// Clear the buffer rune by rune.
	for range []rune(m.editText) {
		m, _ = applyUpdate(m, key(KeyBackspace))
	}
	m, _ = applyUpdate(m, key(KeySave))
	if m.view.State != consult.StateEditing {
		t.Errorf("empty save left edit mode: %s", m.view.State)
	}
	if m.errorMessage != "Transcript cannot be empty" {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}

	m = typeText(m, "사람1: 열이 있나요?\n사람2: 아니요")
	m, _ = applyUpdate(m, key(KeySave))
	if m.view.State != consult.StateRegenerating && m.view.State != consult.StateSummarized {
		t.Fatalf("state after save = %s", m.view.State)
	}

	m = settle(t, m)
	if m.view.Transcript.ID == oldID {
		t.Error("save should create a new transcript")
	}
	if m.view.Transcript.Text != "사람1: 열이 있나요?\n사람2: 아니요" {
		t.Errorf("transcript = %q", m.view.Transcript.Text)
	}
	if len(m.view.Dialogue) != 2 {
		t.Errorf("dialogue = %d turns, want 2", len(m.view.Dialogue))
	}
}

func TestEditKeysAreTyped(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)
	m, _ = applyUpdate(m, key(KeyEdit))

	before := m.editText
	m = typeText(m, "qnx")
	if m.screen != ScreenConsultation || m.editText != before+"qnx" {
		t.Errorf("command keys should be typed in edit mode, got %q", m.editText)
	}

	m, _ = applyUpdate(m, key(KeyEsc))
	if m.view.State != consult.StateSummarized {
		t.Errorf("esc should cancel the edit, state = %s", m.view.State)
	}
	if m.editText != "" {
		t.Errorf("editText = %q after cancel", m.editText)
	}
}

func TestEditNotAllowedWhileSummarizing(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))

	// Before settling the session is transcribing or generating.
	m, _ = applyUpdate(m, key(KeyEdit))
	if m.view.State == consult.StateEditing {
		t.Error("edit should be ignored before a summary exists")
	}
}

func TestRetryAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.failSummary.Store(true)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)

	if m.view.State != consult.StateFailed {
		t.Fatalf("state = %s, want Failed", m.view.State)
	}
	if view := m.View(); !strings.Contains(view, "Retry") {
		t.Error("footer should offer retry")
	}

	f.failSummary.Store(false)
	m, _ = applyUpdate(m, key(KeyRetry))
	m = settle(t, m)
	if m.view.State != consult.StateSummarized || m.view.Err != nil {
		t.Errorf("after retry = %s %v", m.view.State, m.view.Err)
	}
}

func TestRetryTranscription(t *testing.T) {
	f := newFixture(t)
	f.failTranscript.Store(true)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)

	if m.view.State != consult.StateEmpty || m.view.Err == nil {
		t.Fatalf("state = %s err = %v, want Empty with transcription error", m.view.State, m.view.Err)
	}
	if view := m.View(); !strings.Contains(view, "Transcription failed") {
		t.Error("status should report the transcription failure")
	}

	f.failTranscript.Store(false)
	m, _ = applyUpdate(m, key(KeyRetry))
	m = settle(t, m)
	if m.view.State != consult.StateSummarized {
		t.Errorf("state = %s, want Summarized", m.view.State)
	}
}

func TestNewConsultation(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)
	oldID := m.view.Transcript.ID

	m, _ = applyUpdate(m, key(KeyNew))
	if m.view.Summary != nil {
		t.Error("n should discard the summary")
	}
	m = settle(t, m)
	if m.view.Transcript == nil || m.view.Transcript.ID == oldID {
		t.Error("n should seed a fresh transcript")
	}
}

func TestBackClosesSession(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))
	changes := m.changes

	m, _ = applyUpdate(m, key(KeyEsc))
	if m.screen != ScreenRoster || m.session != nil {
		t.Fatal("esc should return to the roster")
	}
	if ids := f.registry.OpenIDs(); len(ids) != 0 {
		t.Errorf("open sessions = %v, want none", ids)
	}

	// A late change from the closed session is ignored.
	m, cmd := applyUpdate(m, SessionChangedMsg{Changes: changes})
	if cmd != nil || m.screen != ScreenRoster {
		t.Error("stale change should be ignored")
	}
}

func TestArrivalReseedsEmptySession(t *testing.T) {
	f := newFixture(t)
	f.failTranscript.Store(true)
	arrivals := make(chan string, 1)
	m := f.model(Options{Arrivals: arrivals})
	if m.Init() == nil {
		t.Fatal("Init should wait for arrivals")
	}

	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)
	if m.view.State != consult.StateEmpty {
		t.Fatalf("state = %s, want Empty", m.view.State)
	}

	f.failTranscript.Store(false)
	m, cmd := applyUpdate(m, ArrivalMsg{PatientID: "P001"})
	if cmd == nil {
		t.Error("arrival should keep listening")
	}
	if !strings.Contains(m.notice, "P001") {
		t.Errorf("notice = %q", m.notice)
	}
	m = settle(t, m)
	if m.view.State != consult.StateSummarized {
		t.Errorf("state = %s, want Summarized", m.view.State)
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	now := time.Date(2024, 1, 22, 9, 30, 0, 0, time.UTC)
	m := f.model(Options{ExportDir: dir, Now: func() time.Time { return now }})
	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)

	m, cmd := applyUpdate(m, key(KeyExport))
	if cmd == nil {
		t.Fatal("x should start an export")
	}
	done, ok := cmd().(ExportDoneMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want ExportDoneMsg", cmd())
	}
	if done.Err != nil {
		t.Fatalf("export: %v", done.Err)
	}
	want := filepath.Join(dir, "P001_20240122-093000_SOAP.docx")
	if done.Path != want {
		t.Errorf("path = %q, want %q", done.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("exported file: %v", err)
	}

	m, _ = applyUpdate(m, done)
	if !strings.Contains(m.notice, want) {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestExportWithoutSummary(t *testing.T) {
	f := newFixture(t)
	f.failSummary.Store(true)
	m := f.model(Options{})
	m, _ = applyUpdate(m, key(KeyEnter))
	m = settle(t, m)

	m, _ = applyUpdate(m, key(KeyExport))
	if m.errorMessage == "" || !m.errorTransient {
		t.Error("export without summary should show a transient error")
	}

	m, _ = applyUpdate(m, ClearTransientErrorMsg{})
	if m.errorMessage != "" {
		t.Errorf("errorMessage = %q after clear", m.errorMessage)
	}
}

func TestViewWithoutSize(t *testing.T) {
	f := newFixture(t)
	m := New(f.roster, f.registry, Options{})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestViewRendersRoster(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	view := m.View()
	for _, want := range []string{"CHARTNOTE", "5 patients · 15 consultations", "박철수", "정기 환자", "신규 환자"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("가나 다라 마바", 5)
	want := []string{"가나", "다라", "마바"}
	if len(got) != len(want) {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	if got := wrapText("a\n\nb", 10); len(got) != 3 || got[1] != "" {
		t.Errorf("blank lines should be kept: %q", got)
	}
}
