// Package output formats command results for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jwulff/chartnote/internal/api"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/dialogue"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) Summarizing() {
	fmt.Fprintf(f.w, "🤖 Generating SOAP note...\n")
}

func (f *Formatter) Exported(path string) {
	fmt.Fprintf(f.w, "✅ SOAP note saved: %s\n", path)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func (f *Formatter) RosterHeader(patients, consultations int) {
	fmt.Fprintf(f.w, "👥 %d patients, %d consultations\n\n", patients, consultations)
}

func (f *Formatter) RosterItem(p api.PatientView) {
	fmt.Fprintf(f.w, "  %s  %s (%d, %s)  %s  %s\n",
		p.ID, p.Name, p.Age, p.Gender, p.Tier, strings.Join(p.Conditions, ", "))
}

// Dialogue prints one line per turn.
func (f *Formatter) Dialogue(turns []dialogue.Turn) {
	if len(turns) == 0 {
		fmt.Fprintf(f.w, "No speaker turns detected\n")
		return
	}
	fmt.Fprintf(f.w, "%d turns detected\n\n", len(turns))
	for _, t := range turns {
		fmt.Fprintf(f.w, "%s: %s\n", t.Speaker.Label(), t.Text)
	}
}

// SOAP prints the four sections of a note.
func (f *Formatter) SOAP(s consult.Summary) {
	sections := []struct{ title, body string }{
		{"S (Subjective)", s.Subjective},
		{"O (Objective)", s.Objective},
		{"A (Assessment)", s.Assessment},
		{"P (Plan)", s.Plan},
	}
	for i, sec := range sections {
		if i > 0 {
			fmt.Fprintln(f.w)
		}
		fmt.Fprintf(f.w, "%s\n%s\n", sec.title, sec.body)
	}
}

// SessionEvent prints one line describing a session update.
func (f *Formatter) SessionEvent(v api.SessionView) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", v.PatientID, v.State)
	if v.Transcribing {
		b.WriteString(" (transcribing)")
	}
	if v.Transcript != nil {
		fmt.Fprintf(&b, "  transcript %s %s", v.Transcript.ID, v.Transcript.Duration())
	}
	if len(v.Dialogue) > 0 {
		fmt.Fprintf(&b, "  %d turns", len(v.Dialogue))
	}
	if v.Error != "" {
		fmt.Fprintf(&b, "  error: %s", v.Error)
	}
	fmt.Fprintln(f.w, b.String())
}
