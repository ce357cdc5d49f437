package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
)

// ErrNoRecording means the inbox holds no transcript for the patient yet.
var ErrNoRecording = errors.New("no transcript in inbox")

// Directory reads transcripts dropped into an inbox directory by an external
// speech-to-text tool, one <patient-id>.txt per patient.
type Directory struct {
	Inbox string
}

// PathFor returns the inbox file for a patient.
func (d *Directory) PathFor(patientID string) string {
	return filepath.Join(d.Inbox, patientID+".txt")
}

func (d *Directory) Transcribe(ctx context.Context, p db.Patient) (consult.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return consult.Transcript{}, err
	}

	path := d.PathFor(p.ID)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return consult.Transcript{}, fmt.Errorf("%w: %s", ErrNoRecording, path)
	}
	if err != nil {
		return consult.Transcript{}, fmt.Errorf("stat transcript: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return consult.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return consult.Transcript{}, fmt.Errorf("%w: %s is empty", ErrNoRecording, path)
	}

	return consult.Transcript{
		ID:          uuid.NewString(),
		SourceLabel: filepath.Base(path),
		Text:        text,
		CreatedAt:   info.ModTime(),
	}, nil
}

// patientIDFromPath returns the patient id for an inbox file, or "" if the
// file is not a transcript.
func patientIDFromPath(path string) string {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.ToLower(filepath.Ext(base)) != ".txt" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
