package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/api"
	"github.com/jwulff/chartnote/internal/output"
)

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var (
		url  string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "watch <patient-id>",
		Short: "Follow a consultation on a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())
			client := api.NewClient(url)
			ctx := cmd.Context()

			if open {
				if _, err := client.OpenSession(ctx, args[0]); err != nil {
					return err
				}
			}

			stream, err := client.Events(ctx, args[0])
			if err != nil {
				return err
			}
			defer stream.Close()

			for {
				v, err := stream.ReadEvent()
				if errors.Is(err, io.EOF) {
					f.Info("Consultation closed")
					return nil
				}
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				f.SessionEvent(v)
			}
		},
	}

	cmd.Flags().StringVar(&url, "url", api.DefaultURL, "server URL")
	cmd.Flags().BoolVar(&open, "open", false, "open the consultation if it is not open yet")
	return cmd
}
