package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/dialogue"
	"github.com/jwulff/chartnote/internal/export"
	"github.com/jwulff/chartnote/internal/logger"
	"github.com/jwulff/chartnote/internal/output"
	"github.com/jwulff/chartnote/internal/summarize"
)

func NewSummarizeCmd(deps *Dependencies) *cobra.Command {
	var docxPath string

	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Generate a SOAP note for one transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			f := output.NewFormatter(cmd.OutOrStdout())

			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return consult.ErrEmptyEdit
			}

			log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
			summarizer, err := summarize.New(cfg.Summarizer, log)
			if err != nil {
				return err
			}

			label := "stdin"
			if len(args) > 0 {
				label = args[0]
			}
			t := consult.Transcript{ID: uuid.NewString(), SourceLabel: label, Text: text, CreatedAt: time.Now()}

			f.Summarizing()
			s, err := summarizer.Summarize(cmd.Context(), t)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}
			f.SOAP(s)

			if docxPath == "" {
				return nil
			}
			doc := export.Document{
				PatientName: label,
				Transcript:  t,
				Dialogue:    dialogue.Parse(text),
				Summary:     s,
				ExportedAt:  time.Now(),
			}
			if err := export.WriteSOAP(docxPath, doc); err != nil {
				return err
			}
			f.Exported(docxPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&docxPath, "docx", "", "also write the note to this .docx file")
	return cmd
}
