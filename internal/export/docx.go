// Package export writes finished consultations to .docx files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/dialogue"
)

const (
	fontName = "Malgun Gothic"
	fontSize = 11
)

// ErrNothingToExport is returned for a consultation without a summary.
var ErrNothingToExport = errors.New("consultation has no summary to export")

// Document is everything that goes into an exported note.
type Document struct {
	PatientID   string
	PatientName string
	Transcript  consult.Transcript
	Dialogue    []dialogue.Turn
	Summary     consult.Summary
	ExportedAt  time.Time
}

// FromView builds a Document from a session view.
func FromView(v consult.View, now time.Time) (Document, error) {
	if v.Summary == nil || v.Transcript == nil {
		return Document{}, ErrNothingToExport
	}
	return Document{
		PatientID:   v.PatientID,
		PatientName: v.PatientName,
		Transcript:  *v.Transcript,
		Dialogue:    v.Dialogue,
		Summary:     *v.Summary,
		ExportedAt:  now,
	}, nil
}

// FileName is the default file name for d.
func FileName(d Document) string {
	return fmt.Sprintf("%s_%s_SOAP.docx", d.PatientID, d.ExportedAt.Format("20060102-150405"))
}

// WriteSOAP writes d as a .docx at path, creating the parent directory.
func WriteSOAP(path string, d Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), fmt.Sprintf("SOAP Note: %s (%s)", d.PatientName, d.PatientID), true, 16)
	addStyledRun(doc.AddParagraph(""), fmt.Sprintf("%s · %s · %s",
		d.Transcript.SourceLabel, d.Transcript.Duration(), d.ExportedAt.Format("2006-01-02 15:04")), false, 9)
	doc.AddParagraph("")

	sections := []struct{ title, body string }{
		{"Subjective", d.Summary.Subjective},
		{"Objective", d.Summary.Objective},
		{"Assessment", d.Summary.Assessment},
		{"Plan", d.Summary.Plan},
	}
	for _, sec := range sections {
		addStyledRun(doc.AddParagraph(""), sec.title, true, 14)
		for _, line := range strings.Split(sec.body, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				addStyledRun(doc.AddParagraph(""), line, false, fontSize)
			}
		}
	}

	doc.AddParagraph("")
	addStyledRun(doc.AddParagraph(""), "Transcript", true, 14)
	if len(d.Dialogue) == 0 {
		for _, line := range strings.Split(d.Transcript.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				addStyledRun(doc.AddParagraph(""), line, false, fontSize)
			}
		}
	} else {
		for _, turn := range d.Dialogue {
			addTurn(doc.AddParagraph(""), turn)
		}
	}

	return doc.SaveTo(path)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addTurn(p *docx.Paragraph, turn dialogue.Turn) {
	color := "1F4E79"
	if turn.Speaker == dialogue.Patient {
		color = "385723"
	}
	p.AddText(turn.Speaker.Label()+": ").Font(fontName).Size(fontSize).Color(color).Bold(true)
	p.AddText(turn.Text).Font(fontName).Size(fontSize).Color("000000")
}
