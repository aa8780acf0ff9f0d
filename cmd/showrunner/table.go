package main

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"showrunner/internal/state"
)

// renderRunHistory renders the run history as a rounded table, one row per
// run, newest first. Numeric columns are right-aligned; a run with no failed
// stage shows "-".
func renderRunHistory(runs []state.RunRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Started", "Episode", "Outcome", "Failed Stage", "Duration"})

	for _, run := range runs {
		failure := run.FailedStage
		if failure == "" {
			failure = "-"
		}
		tw.AppendRow(table.Row{
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(run.Episode),
			run.Outcome,
			failure,
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
