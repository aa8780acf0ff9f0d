package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showrunner/internal/episode"
	"showrunner/internal/notifications"
	"showrunner/internal/production"
	"showrunner/internal/state"
	"showrunner/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Produce one episode now",
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

			rc, err := runner.Run(cmd.Context(), collab)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s produced (run %s)\n", episode.Title(rc.Episode), rc.RunID)
			fmt.Fprintf(out, "Publish date: %s\n", rc.PublishDate.Format("2006-01-02"))
			if rc.BlogURL != "" {
				fmt.Fprintf(out, "Blog post:    %s\n", rc.BlogURL)
			}
			if failures := rc.Failures(); len(failures) > 0 {
				fmt.Fprintf(out, "Skipped %d non-critical stage(s):\n", len(failures))
				for _, failure := range failures {
					fmt.Fprintf(out, "  - %s: %v\n", failure.Stage, failure.Err)
				}
			}
			return nil
		},
	}
}
