package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwulff/chartnote/internal/app"
	"github.com/jwulff/chartnote/internal/logger"
)

func NewDashboardCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the consultation dashboard (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, deps)
		},
	}
}

func runDashboard(cmd *cobra.Command, deps *Dependencies) error {
	cfg := deps.Config

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, logFile)

	svc, err := openServices(cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	roster, err := svc.store.Patients()
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	arrivals := make(chan string, 16)
	stopWatch, err := watchInbox(ctx, cfg, log, func(ctx context.Context, patientID string) {
		select {
		case arrivals <- patientID:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer stopWatch()

	model := app.New(roster, svc.registry, app.Options{
		ExportDir: cfg.Export.Dir,
		Arrivals:  arrivals,
		Logger:    log,
	})

	log.Info(ctx, "dashboard started with %d patients", len(roster))
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
