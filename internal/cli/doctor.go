package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/config"
	"github.com/jwulff/chartnote/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			f := output.NewFormatter(cmd.OutOrStdout())
			ok := true

			if cfg.Roster.Path == "" {
				f.SetupCheck("Roster", true, "built-in demo roster")
			} else if store, err := openRoster(cfg); err != nil {
				f.SetupCheck("Roster", false, err.Error()+". Create one with: chartnote roster seed "+cfg.Roster.Path)
				ok = false
			} else {
				patients, err := store.Patients()
				store.Close()
				if err != nil {
					f.SetupCheck("Roster", false, err.Error())
					ok = false
				} else {
					f.SetupCheck("Roster", true, cfg.Roster.Path)
					f.SetupCheck("Patients", len(patients) > 0, pluralize(len(patients), "patient"))
					ok = ok && len(patients) > 0
				}
			}

			switch cfg.Summarizer.Provider {
			case config.ProviderGemini:
				f.SetupCheck("Summarizer", true, "gemini ("+cfg.Summarizer.Model+", "+pluralize(len(cfg.Summarizer.APIKeys), "key")+")")
			case config.ProviderAnthropic:
				f.SetupCheck("Summarizer", true, "anthropic ("+cfg.Summarizer.Model+")")
			default:
				f.SetupCheck("Summarizer", true, "mock (set CHARTNOTE_SUMMARIZER to use a real model)")
			}

			if cfg.Transcriber.Provider == config.ProviderDirectory {
				if info, err := os.Stat(cfg.Transcriber.Inbox); err != nil || !info.IsDir() {
					f.SetupCheck("Transcript inbox", false, cfg.Transcriber.Inbox+" does not exist")
					ok = false
				} else {
					f.SetupCheck("Transcript inbox", true, cfg.Transcriber.Inbox)
				}
			} else {
				f.SetupCheck("Transcriber", true, "mock")
			}

			f.SetupCheck("Export directory", true, cfg.Export.Dir)
			f.SetupCheck("Log file", true, cfg.Logging.File)

			if ok {
				f.Success("\nAll prerequisites met.")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
