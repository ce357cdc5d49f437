package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/api"
	"github.com/jwulff/chartnote/internal/logger"
)

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve consultations over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			if addr == "" {
				addr = cfg.Server.Addr
			}
			log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

			svc, err := openServices(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stopWatch, err := watchInbox(ctx, cfg, log, func(ctx context.Context, patientID string) {
				reseed(ctx, svc.registry, log, patientID)
			})
			if err != nil {
				return err
			}
			defer stopWatch()

			return api.NewServer(svc.registry, svc.store, log).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
