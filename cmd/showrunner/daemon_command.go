package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"showrunner/internal/daemon"
	"showrunner/internal/notifications"
	"showrunner/internal/production"
	"showrunner/internal/state"
	"showrunner/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the daily production schedule in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			store, err := state.Open(cfg)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			notifier := notifications.NewService(cfg)
			runner := workflow.NewRunner(cfg, store, notifier, logger)
			collab := production.NewCollaborators(cfg, store, logger)

			d, err := daemon.New(cfg, store, runner, collab, logger)
			if err != nil {
				return err
			}

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Run(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
