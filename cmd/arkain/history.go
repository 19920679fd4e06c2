// cmd/arkain/history.go
//
// The history subcommand reads the run database: recent runs across all
// jobs, or the latest run for one job with its per-iteration records.
package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/history"
)

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	job := fs.String("job", "", "show the latest run for this job")
	limit := fs.Int("limit", 20, "maximum runs to list")
	asJSON := fs.Bool("json", false, "print JSON instead of the table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadProject(*project)
	if err != nil {
		return err
	}
	runs, err := history.NewStore(cfg.HistoryDBPath())
	if err != nil {
		return err
	}
	defer runs.Close()

	if name := strings.TrimSpace(*job); name != "" {
		return showLatestRun(runs, name, *asJSON)
	}

	list, err := runs.Runs(*limit)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, run := range list {
		fmt.Println(runLine(run))
	}
	return nil
}

func showLatestRun(runs *history.Store, job string, asJSON bool) error {
	run, found, err := runs.LatestRun(job)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no recorded runs for job %q", job)
	}
	records, err := runs.Iterations(run.ID)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(struct {
			Run        history.Run               `json:"run"`
			Iterations []history.IterationRecord `json:"iterations"`
		}{run, records})
	}
	fmt.Println(runLine(run))
	for _, record := range records {
		fmt.Printf("  iter %d  %-13s  blockers:%d high:%d warnings:%d  %s\n",
			record.Iteration, record.Verdict, record.Blockers, record.Highs,
			record.Warnings, record.Summary)
	}
	return nil
}

func runLine(run history.Run) string {
	status := "running"
	if run.FinishedAt != nil {
		status = run.Verdict
		if run.Forced {
			status += " (forced)"
		}
	}
	return fmt.Sprintf("%s  %-20s  %s  %d iteration(s)  %s",
		run.StartedAt.Format(time.DateTime), run.Job, run.ID[:8], run.Iterations, status)
}
