package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showrunner/internal/state"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show episode counter, last publication, and recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := state.Open(cfg)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			cmdCtx := cmd.Context()

			number, err := store.EpisodeNumber(cmdCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Next episode: %d\n", number)

			if lastRun, ok, err := store.LastRunAt(cmdCtx); err != nil {
				return err
			} else if ok {
				fmt.Fprintf(out, "Last run:     %s\n", lastRun.Local().Format("2006-01-02 15:04"))
			} else {
				fmt.Fprintln(out, "Last run:     never")
			}

			publication, err := store.Publication(cmdCtx)
			if err != nil {
				return err
			}
			if publication != nil {
				fmt.Fprintf(out, "Published:    episode %d on %s\n", publication.Episode, publication.PublishDate)
				if publication.BlogURL != "" {
					fmt.Fprintf(out, "Blog post:    %s\n", publication.BlogURL)
				}
			}

			runs, err := store.RecentRuns(cmdCtx, historyLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "\nNo runs recorded yet.")
				return nil
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderRunHistory(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of history rows to display")
	return cmd
}
