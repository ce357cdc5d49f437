package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
	"github.com/jwulff/chartnote/internal/dialogue"
	"github.com/jwulff/chartnote/internal/ui"
	"github.com/mattn/go-runewidth"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.screen == ScreenRoster {
		sections = append(sections, m.renderRoster())
	} else {
		sections = append(sections, m.renderMainContent())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	} else if m.notice != "" {
		sections = append(sections, ui.NoticeStyle.Render(m.notice))
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("CHARTNOTE")
	stats := ui.DimStyle.Render(fmt.Sprintf(" · %d patients · %d consultations", m.stats.Patients, m.stats.Consultations))
	return title + stats
}

func (m Model) renderStatusBar() string {
	if m.screen == ScreenRoster {
		if m.searching || m.query != "" {
			cursor := ""
			if m.searching {
				cursor = "▌"
			}
			return ui.SearchStyle.Render("/ "+m.query+cursor) +
				ui.DimStyle.Render(fmt.Sprintf("  %d of %d", len(m.filtered), len(m.roster)))
		}
		return ui.StatusStyle.Render("Select a patient to start a consultation")
	}

	v := m.view
	name := ui.HeaderStyle.Render(fmt.Sprintf("%s (%s)", v.PatientName, v.PatientID))
	parts := []string{name, stateBadge(v)}
	if v.Transcript != nil {
		parts = append(parts, ui.DimStyle.Render(v.Transcript.SourceLabel+" · "+v.Transcript.Duration()))
	}
	return strings.Join(parts, "  ")
}

// stateBadge describes what the session is doing.
func stateBadge(v consult.View) string {
	switch {
	case v.Transcribing:
		return ui.StateBusyStyle.Render("⟳ Transcribing recording...")
	case v.State == consult.StateEmpty && v.Err != nil:
		return ui.StateFailedStyle.Render("✗ Transcription failed")
	case v.State == consult.StateEmpty:
		return ui.StateIdleStyle.Render("○ No transcript")
	case v.State == consult.StateReady:
		return ui.StateIdleStyle.Render("○ Transcript ready")
	case v.State == consult.StateSummarizing:
		return ui.StateBusyStyle.Render("⟳ Generating SOAP note...")
	case v.State == consult.StateRegenerating:
		return ui.StateBusyStyle.Render("⟳ Regenerating SOAP note...")
	case v.State == consult.StateSummarized:
		return ui.StateDoneStyle.Render("● SOAP note ready")
	case v.State == consult.StateEditing:
		return ui.StateEditStyle.Render("✎ Editing transcript")
	case v.State == consult.StateFailed:
		return ui.StateFailedStyle.Render("✗ Summary failed")
	}
	return ui.StateIdleStyle.Render(v.State.String())
}

func tierBadge(t db.Tier) string {
	switch t {
	case db.TierRegular:
		return ui.TierRegularStyle.Render(t.Label())
	case db.TierManaged:
		return ui.TierManagedStyle.Render(t.Label())
	default:
		return ui.TierNewStyle.Render(t.Label())
	}
}

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 20
	}
	// Reserve: header(1) + status(1) + divider(1) + divider(1) + error(1) + footer(1) + padding
	reserved := 7
	return max(5, m.height-reserved)
}

func (m Model) renderRoster() string {
	height := m.contentHeight()

	var lines []string
	lines = append(lines, ui.PanelTitleActiveStyle.Render(fmt.Sprintf("PATIENTS (%d)", len(m.filtered))))

	if len(m.filtered) == 0 {
		lines = append(lines, ui.DimStyle.Render("  No patients match \""+m.query+"\""))
	}

	// Keep the cursor in view.
	visible := height - 1
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.filtered) && len(lines) < height; i++ {
		p := m.filtered[i]
		last := "-"
		if p.LastConsultation != nil {
			last = p.LastConsultation.Format("2006-01-02")
		}
		info := fmt.Sprintf("%s %s %d세 %s", p.ID, p.Name, p.Age, p.Gender)
		detail := ui.DimStyle.Render(fmt.Sprintf("  %s · 최근 %s · %d회", strings.Join(p.Conditions, ", "), last, p.ConsultationCount))

		var line string
		if i == m.cursor {
			line = ui.SelectedStyle.Render("> "+info) + "  " + tierBadge(p.Tier()) + detail
		} else {
			line = "  " + info + "  " + tierBadge(p.Tier()) + detail
		}
		lines = append(lines, truncateToWidth(line, m.width))
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) transcriptPanelWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width*55/100)
}

func (m Model) soapPanelWidth() int {
	if m.width == 0 {
		return 40
	}
	return max(20, m.width-m.transcriptPanelWidth()-3)
}

func (m Model) renderMainContent() string {
	transcriptW := m.transcriptPanelWidth()
	soapW := m.soapPanelWidth()
	contentH := m.contentHeight()

	transcriptPanel := m.renderTranscriptPanel(transcriptW, contentH)
	soapPanel := m.renderSOAPPanel(soapW, contentH)

	divider := ui.DividerStyle.Render("│")

	// Join panels side by side
	leftLines := strings.Split(transcriptPanel, "\n")
	rightLines := strings.Split(soapPanel, "\n")

	var rows []string
	for i := 0; i < contentH; i++ {
		l := strings.Repeat(" ", transcriptW)
		if i < len(leftLines) {
			l = padRight(leftLines[i], transcriptW)
		}
		r := ""
		if i < len(rightLines) {
			r = rightLines[i]
		}
		rows = append(rows, l+divider+" "+r)
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderTranscriptPanel(width, height int) string {
	v := m.view
	textWidth := max(10, width-4)

	var lines []string
	switch {
	case v.State == consult.StateEditing:
		lines = append(lines, ui.PanelTitleActiveStyle.Render("EDIT TRANSCRIPT"))
		for _, wl := range wrapText(m.editText+"▌", textWidth) {
			lines = append(lines, "  "+ui.EditCursorStyle.Render(wl))
		}

	case v.Transcript == nil:
		lines = append(lines, ui.PanelTitleStyle.Render("TRANSCRIPT"))
		lines = append(lines, "")
		if v.Transcribing {
			lines = append(lines, ui.DimStyle.Render("  Waiting for the transcription service..."))
		} else {
			lines = append(lines, ui.DimStyle.Render("  No transcript yet"))
		}

	case m.showRaw || len(v.Dialogue) == 0:
		lines = append(lines, ui.PanelTitleStyle.Render("RAW TRANSCRIPT"))
		for _, wl := range wrapText(v.Transcript.Text, textWidth) {
			lines = append(lines, "  "+wl)
		}

	default:
		lines = append(lines, ui.PanelTitleStyle.Render("DIALOGUE")+
			ui.DimStyle.Render(fmt.Sprintf("  %d turns detected", len(v.Dialogue))))
		lines = append(lines, renderDialogue(v.Dialogue, textWidth)...)
	}

	// Editing scrolls to the cursor, everything else shows the top.
	if v.State == consult.StateEditing && len(lines) > height {
		lines = append(lines[:1], lines[len(lines)-height+1:]...)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func renderDialogue(turns []dialogue.Turn, width int) []string {
	var lines []string
	for _, t := range turns {
		label := ui.PatientLabelStyle.Render(t.Speaker.Label() + ":")
		if t.Speaker == dialogue.Clinician {
			label = ui.ClinicianLabelStyle.Render(t.Speaker.Label() + ":")
		}
		indent := strings.Repeat(" ", lipgloss.Width(label)+1)
		wrapped := wrapText(t.Text, max(10, width-len(indent)))
		lines = append(lines, "  "+label+" "+wrapped[0])
		for _, wl := range wrapped[1:] {
			lines = append(lines, "  "+indent+wl)
		}
	}
	return lines
}

func (m Model) renderSOAPPanel(width, height int) string {
	v := m.view
	var lines []string
	lines = append(lines, ui.PanelTitleStyle.Render("SOAP NOTE"))

	if v.Summary == nil {
		lines = append(lines, "")
		switch {
		case v.State.Generating():
			lines = append(lines, ui.SpinnerStyle.Render("  ⟳ Generating..."))
		case v.State == consult.StateFailed:
			lines = append(lines, ui.ErrorTextStyle.Render("  No summary. Press r to retry."))
		default:
			lines = append(lines, ui.DimStyle.Render("  Waiting for transcript"))
		}
	} else {
		sections := []struct{ title, body string }{
			{"S  Subjective", v.Summary.Subjective},
			{"O  Objective", v.Summary.Objective},
			{"A  Assessment", v.Summary.Assessment},
			{"P  Plan", v.Summary.Plan},
		}
		for _, sec := range sections {
			lines = append(lines, ui.SectionTitleStyle.Render(sec.title))
			for _, wl := range wrapText(sec.body, max(10, width-2)) {
				lines = append(lines, "  "+wl)
			}
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func footerKey(key, desc string) string {
	return ui.FooterKeyStyle.Render(key) + ui.FooterDescStyle.Render(" "+desc)
}

func (m Model) renderFooter() string {
	var parts []string

	switch {
	case m.screen == ScreenRoster && m.searching:
		parts = append(parts, footerKey("Enter", "Done"), footerKey("Esc", "Clear"), footerKey("↑↓", "Nav"))
		return strings.Join(parts, "  ")

	case m.screen == ScreenRoster:
		parts = append(parts, footerKey("j/k", "Nav"), footerKey("Enter", "Open"), footerKey("/", "Search"))

	case m.view.State == consult.StateEditing:
		parts = append(parts, footerKey("Ctrl+S", "Save"), footerKey("Esc", "Cancel"))
		return strings.Join(parts, "  ")

	default:
		parts = append(parts, footerKey("v", "Raw/Dialogue"))
		if m.view.CanEdit() {
			parts = append(parts, footerKey("e", "Edit"))
		}
		if m.view.Err != nil {
			parts = append(parts, footerKey("r", "Retry"))
		}
		parts = append(parts, footerKey("n", "New"))
		if m.view.Summary != nil {
			parts = append(parts, footerKey("x", "Export"))
		}
		parts = append(parts, footerKey("Esc", "Back"))
	}

	parts = append(parts, footerKey("q", "Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// wrapText breaks text on spaces so no line is wider than width cells.
// Hangul is two cells wide, so widths are measured with runewidth.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
