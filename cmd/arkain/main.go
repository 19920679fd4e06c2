// cmd/arkain/main.go
//
// Entry point for the arkain CLI. Every subcommand operates on a project
// directory (cwd by default) that carries a .arkain/ folder with the loop
// configuration, jurisdiction profile packs, run logs, and the history
// database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/artifact"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/config"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/jurisdiction"
)

const usageText = `arkain — convergence engine for slot game design artifacts

Usage:
  arkain <command> [flags]

Commands:
  init       create the .arkain project directory
  converge   run the convergence loop over a job's artifacts
  audit      score the design document's section quality
  sanity     structurally validate the paytable and reel strips
  comply     evaluate a game proposal against jurisdiction profiles
  budget     check an RTP budget breakdown against its target
  profile    inspect jurisdiction profiles
  patch      replace one design-document section
  history    list recorded convergence runs
  watch      live view of the latest run for a job

Run 'arkain <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	var err error
	switch command {
	case "init":
		err = runInit(args)
	case "converge":
		err = runConverge(args)
	case "audit":
		err = runAudit(args)
	case "sanity":
		err = runSanity(args)
	case "comply":
		err = runComply(args)
	case "budget":
		err = runBudget(args)
	case "profile":
		err = runProfile(args)
	case "patch":
		err = runPatch(args)
	case "history":
		err = runHistory(args)
	case "watch":
		err = runWatch(args)
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return
	default:
		fmt.Fprintf(os.Stderr, "arkain: unknown command %q\n\n%s", command, usageText)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "arkain %s: %v\n", command, err)
		os.Exit(1)
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadProject(*project)
	if err != nil {
		return err
	}
	fmt.Printf("Initialized %s\n", cfg.ArkainProjectDir)
	fmt.Printf("Edit %s to set loop and target settings.\n", cfg.ProjectConfigPath())
	return nil
}

// loadProject resolves the project directory, ensures the .arkain structure
// exists, and loads the merged configuration.
func loadProject(dir string) (*config.Config, error) {
	project := strings.TrimSpace(dir)
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		project = cwd
	}
	absolute, err := filepath.Abs(project)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitArkainDir(absolute); err != nil {
		return nil, fmt.Errorf("init %s: %w", config.ArkainDir, err)
	}
	return config.NewConfig(absolute)
}

// loadProfiles builds the jurisdiction store with the built-in markets plus
// any YAML profile packs dropped into .arkain/profiles/.
func loadProfiles(cfg *config.Config) (*jurisdiction.Store, error) {
	store := jurisdiction.NewStore()
	if err := store.LoadPackDir(cfg.ProfilesDir()); err != nil {
		return nil, err
	}
	return store, nil
}

// openJobStore opens the artifact store for a job. Bare names resolve under
// the configured jobs directory; anything with a path separator is taken as
// a directory path.
func openJobStore(cfg *config.Config, job string) (*artifact.Store, error) {
	name := strings.TrimSpace(job)
	if name == "" {
		return nil, fmt.Errorf("-job is required")
	}
	dir := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, os.PathSeparator) {
		dir = filepath.Join(cfg.JobsDir(), name)
	}
	j, err := artifact.NewJob(dir)
	if err != nil {
		return nil, err
	}
	return artifact.NewStore(j), nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// listFlag is a repeatable, comma-splittable string list flag.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			*l = append(*l, trimmed)
		}
	}
	return nil
}
