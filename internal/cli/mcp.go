package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/logger"
	"github.com/jwulff/chartnote/internal/mcpserver"
)

func NewMCPCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve chartnote tools to an MCP client over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			// stdout carries the protocol.
			log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

			svc, err := openServices(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			return mcpserver.ServeStdio(mcpserver.NewTools(svc.registry, svc.store, log))
		},
	}
}
