// cmd/arkain/watch.go
//
// The watch subcommand opens the live terminal view over a job's latest
// run: iteration verdicts from the history database plus the tail of the
// run logbook, refreshed while a converge process runs elsewhere.
package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/history"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/logbook"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/tui"
)

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	job := fs.String("job", "", "job name to watch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.TrimSpace(*job)
	if name == "" {
		return fmt.Errorf("-job is required")
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

	log, err := logbook.New(filepath.Join(cfg.LogsDir(), name+".log"))
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewWatchModel(name, runs, log), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run watch view: %w", err)
	}
	return nil
}
