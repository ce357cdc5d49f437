package export

import (
	"archive/zip"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/dialogue"
)

func testView() consult.View {
	text := "의사: 어디가 불편하세요?\n환자: 무릎이 아파요."
	return consult.View{
		PatientID:   "P005",
		PatientName: "정미선",
		State:       consult.StateSummarized,
		Transcript:  &consult.Transcript{ID: "t1", SourceLabel: "visit.mp3", Text: text, DurationSeconds: 200},
		Summary: &consult.Summary{
			Subjective: "무릎 통증",
			Objective:  "부종",
			Assessment: "관절염 의심",
			Plan:       "1. X-ray\n2. 재방문",
		},
		Dialogue: dialogue.Parse(text),
	}
}

func readDocumentXML(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open docx: %v", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(data)
	}
	t.Fatal("word/document.xml not found")
	return ""
}

func TestWriteSOAP(t *testing.T) {
	now := time.Date(2024, 1, 21, 14, 30, 0, 0, time.UTC)
	d, err := FromView(testView(), now)
	if err != nil {
		t.Fatalf("FromView: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", FileName(d))
	if err := WriteSOAP(path, d); err != nil {
		t.Fatalf("WriteSOAP: %v", err)
	}

	xml := readDocumentXML(t, path)
	for _, want := range []string{"정미선", "Subjective", "Plan", "관절염 의심", "재방문", "무릎이 아파요."} {
		if !strings.Contains(xml, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestFileName(t *testing.T) {
	d := Document{PatientID: "P001", ExportedAt: time.Date(2024, 1, 20, 9, 5, 7, 0, time.UTC)}
	if got, want := FileName(d), "P001_20240120-090507_SOAP.docx"; got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func TestFromViewWithoutSummary(t *testing.T) {
	v := testView()
	v.Summary = nil
	if _, err := FromView(v, time.Now()); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("err = %v, want ErrNothingToExport", err)
	}
}
