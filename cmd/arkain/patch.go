// cmd/arkain/patch.go
//
// The patch subcommand replaces exactly one section of a job's design
// document, taking the new body from a file or stdin. The applier records
// the change in the side revision log; everything outside the section is
// untouched.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/artifact"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/gdd"
)

func runPatch(args []string) error {
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	job := fs.String("job", "", "job name or directory")
	section := fs.String("section", "", "section header to replace (e.g. '## 9. Free Spins')")
	bodyFile := fs.String("body-file", "", "file holding the new section body ('-' for stdin)")
	reason := fs.String("reason", "manual patch", "revision log entry reason")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*section) == "" {
		return fmt.Errorf("-section is required")
	}

	body, err := readBody(*bodyFile)
	if err != nil {
		return err
	}
	cfg, err := loadProject(*project)
	if err != nil {
		return err
	}
	store, err := openJobStore(cfg, *job)
	if err != nil {
		return err
	}

	applier := gdd.NewApplier(artifact.DesignDoc.Path(store.Job()))
	result, err := applier.Apply(*section, body, *reason)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func readBody(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("-body-file is required ('-' reads stdin)")
	}
	if trimmed == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
