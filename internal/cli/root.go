package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/config"
	"github.com/jwulff/chartnote/internal/version"
)

type Dependencies struct {
	// Config is loaded from --config before any command runs unless it is
	// already set.
	Config     *config.Config
	ConfigPath string
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chartnote",
		Short: "Turn consultation recordings into SOAP notes",
		Long: "A clinician dashboard that transcribes consultations, splits them into " +
			"doctor/patient dialogue, and drafts SOAP notes with an LLM.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if deps.Config != nil {
				return nil
			}
			cfg, err := config.Load(deps.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			deps.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, deps)
		},
	}

	rootCmd.PersistentFlags().StringVar(&deps.ConfigPath, "config", "", "config file (default "+config.DefaultFile+" when present)")

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewDashboardCmd(deps))
	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewMCPCmd(deps))
	rootCmd.AddCommand(NewParseCmd(deps))
	rootCmd.AddCommand(NewSummarizeCmd(deps))
	rootCmd.AddCommand(NewRosterCmd(deps))
	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
