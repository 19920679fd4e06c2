// cmd/arkain/converge.go
//
// The converge subcommand runs the full loop over one job. The design
// reviser and simulator are external commands: each receives a JSON request
// on stdin and prints its result on stdout, which keeps the LLM-backed
// tooling out of this binary entirely.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/history"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/logbook"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/loop"
)

func runConverge(args []string) error {
	fs := flag.NewFlagSet("converge", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	job := fs.String("job", "", "job name or directory")
	reviserCmd := fs.String("reviser", "", "design reviser command")
	var reviserArgs listFlag
	fs.Var(&reviserArgs, "reviser-arg", "argument for the reviser command (repeatable)")
	simulatorCmd := fs.String("simulator", "", "simulation re-run command")
	var simulatorArgs listFlag
	fs.Var(&simulatorArgs, "simulator-arg", "argument for the simulator command (repeatable)")
	maxIterations := fs.Int("max-iterations", 0, "iteration budget (defaults from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*reviserCmd) == "" || strings.TrimSpace(*simulatorCmd) == "" {
		return fmt.Errorf("-reviser and -simulator commands are required")
	}

	cfg, err := loadProject(*project)
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(cfg)
	if err != nil {
		return err
	}
	store, err := openJobStore(cfg, *job)
	if err != nil {
		return err
	}

	opts := loop.Options{
		MaxIterations: cfg.Loop().MaxIterations,
		ForceContinue: cfg.Loop().ForceContinue,
		Targets:       cfg.Target(),
	}
	if *maxIterations > 0 {
		opts.MaxIterations = *maxIterations
	}

	log, err := logbook.New(filepath.Join(cfg.LogsDir(), store.Job().Name()+".log"))
	if err != nil {
		return err
	}
	runs, err := history.NewStore(cfg.HistoryDBPath())
	if err != nil {
		return err
	}
	defer runs.Close()

	controller, err := loop.NewController(store, profiles,
		loop.CommandReviser{Command: *reviserCmd, Args: reviserArgs},
		loop.CommandSimulator{Command: *simulatorCmd, Args: simulatorArgs},
		opts,
		loop.WithLogbook(log),
		loop.WithHistoryStore(runs),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := controller.Run(ctx)
	if err != nil {
		return err
	}
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Converged {
		return fmt.Errorf("not converged after %d iteration(s)", result.Iterations)
	}
	return nil
}
