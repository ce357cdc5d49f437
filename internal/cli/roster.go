package cli

import (
	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/api"
	"github.com/jwulff/chartnote/internal/db"
	"github.com/jwulff/chartnote/internal/output"
)

func NewRosterCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect or create the patient roster",
	}
	cmd.AddCommand(newRosterListCmd(deps))
	cmd.AddCommand(newRosterSeedCmd())
	return cmd
}

func newRosterListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List patients, optionally filtered by name or condition",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())

			store, err := openRoster(deps.Config)
			if err != nil {
				return err
			}
			defer store.Close()

			patients, err := store.Patients()
			if err != nil {
				return err
			}

			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			stats := db.Stats(patients)
			matched := db.Filter(patients, query)
			if len(matched) == 0 {
				f.Info("No patients found")
				return nil
			}

			f.RosterHeader(stats.Patients, stats.Consultations)
			for _, p := range matched {
				f.RosterItem(api.NewPatientView(p))
			}
			return nil
		},
	}
}

func newRosterSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [path]",
		Short: "Write the demo roster to a SQLite file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := db.DefaultRosterPath()
			if len(args) > 0 {
				path = args[0]
			}
			if err := db.Seed(path); err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Success("Roster written: " + path)
			return nil
		},
	}
}
