package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/dialogue"
	"github.com/jwulff/chartnote/internal/output"
)

func NewParseCmd(deps *Dependencies) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Split a transcript into speaker turns",
		Long:  "Read a transcript from a file, or stdin when no file is given, and print the doctor/patient turns.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			turns := dialogue.Parse(text)
			if asJSON {
				if turns == nil {
					turns = []dialogue.Turn{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(turns)
			}

			output.NewFormatter(cmd.OutOrStdout()).Dialogue(turns)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print turns as JSON")
	return cmd
}
