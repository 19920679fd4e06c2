package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Job is one game-concept production run rooted at its output directory.
// Exactly one loop instance operates on one job directory at a time, so no
// locking is layered on top of the filesystem.
type Job struct {
	dir  string
	name string
}

// NewJob opens a job rooted at dir, creating the directory if needed.
func NewJob(dir string) (*Job, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("artifact: resolve job dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create job dir %s: %w", abs, err)
	}
	return &Job{dir: abs, name: filepath.Base(abs)}, nil
}

// Dir returns the job's root directory.
func (j *Job) Dir() string { return j.dir }

// Name returns the job's short name (the directory basename).
func (j *Job) Name() string { return j.name }
