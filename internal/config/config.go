// internal/config/config.go
//
// This package handles configuration and the .arkain directory structure.
// Every project that uses the convergence engine gets a .arkain/ folder
// created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/convergence"
)

const (
	// ArkainDir is the name of the directory we create in each project
	ArkainDir = ".arkain"

	defaultMaxIterations = 3
)

const defaultProjectConfigYAML = `# arkain project configuration
version: 1

# Convergence loop settings.
loop:
  max_iterations: 3
  # On budget exhaustion the loop force-accepts the best available artifacts
  # (warnings attached) instead of failing. Set to false to get a hard
  # NOT_CONVERGED result instead.
  force_continue: true

# The game configuration the artifacts must converge on.
target:
  rtp: 96.0
  max_win: 5000
  markets:
    - UK
    - Malta
  features:
    - free_spins
    - multiplier
  theme: ""

# Where job output directories live, relative to the project root.
jobs_dir: jobs
`

// LoopConfig captures convergence loop preferences.
type LoopConfig struct {
	MaxIterations int  `yaml:"max_iterations"`
	ForceContinue bool `yaml:"force_continue"`
}

// ProjectConfig models .arkain/config.yaml.
type ProjectConfig struct {
	Version int                 `yaml:"version"`
	Loop    LoopConfig          `yaml:"loop"`
	Target  convergence.Targets `yaml:"target"`
	JobsDir string              `yaml:"jobs_dir"`
}

// Config holds the runtime configuration for one project.
type Config struct {
	// ProjectDir is the directory where the user ran `arkain` from
	ProjectDir string

	// ArkainProjectDir is ProjectDir/.arkain
	ArkainProjectDir string

	Project ProjectConfig
}

// InitArkainDir creates the .arkain directory structure in the given project
// directory and seeds a default config.yaml when none exists.
//
// Structure created:
// .arkain/
// ├── logs/      <- run logbooks
// ├── state/     <- history database
// └── profiles/  <- jurisdiction profile packs (*.yaml)
func InitArkainDir(projectDir string) error {
	arkainDir := filepath.Join(projectDir, ArkainDir)

	dirs := []string{
		filepath.Join(arkainDir, "logs"),
		filepath.Join(arkainDir, "state"),
		filepath.Join(arkainDir, "profiles"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(arkainDir, "config.yaml"))
}

// NewConfig creates a Config populated with project settings, merging
// .arkain/config.yaml over the defaults when it exists.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:       projectDir,
		ArkainProjectDir: filepath.Join(projectDir, ArkainDir),
		Project:          defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ArkainProjectDir, "logs")
}

// StateDir returns the path to the state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.ArkainProjectDir, "state")
}

// HistoryDBPath returns the on-disk location of the run history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.StateDir(), "history.db")
}

// ProfilesDir returns the directory holding jurisdiction profile packs.
func (c *Config) ProfilesDir() string {
	return filepath.Join(c.ArkainProjectDir, "profiles")
}

// JobsDir returns the root directory for job output directories.
func (c *Config) JobsDir() string {
	return resolvePath(c.ProjectDir, c.Project.JobsDir)
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ArkainProjectDir, "config.yaml")
}

// Loop returns the configured loop settings.
func (c *Config) Loop() LoopConfig {
	return c.Project.Loop
}

// Target returns the configured convergence targets.
func (c *Config) Target() convergence.Targets {
	return c.Project.Target
}

// SetTarget updates the convergence targets and persists them back to
// .arkain/config.yaml.
func (c *Config) SetTarget(target convergence.Targets) error {
	c.Project.Target = target
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Loop: LoopConfig{
			MaxIterations: defaultMaxIterations,
			ForceContinue: true,
		},
		Target: convergence.Targets{
			RTP:      96.0,
			MaxWin:   5000,
			Markets:  []string{"UK", "Malta"},
			Features: []string{"free_spins", "multiplier"},
		},
		JobsDir: "jobs",
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Loop.MaxIterations == 0 {
		pc.Loop.MaxIterations = defaultMaxIterations
	}
	if strings.TrimSpace(pc.JobsDir) == "" {
		pc.JobsDir = "jobs"
	}
}

func (pc *ProjectConfig) normalize() {
	for i := range pc.Target.Markets {
		pc.Target.Markets[i] = strings.TrimSpace(pc.Target.Markets[i])
	}
	for i := range pc.Target.Features {
		pc.Target.Features[i] = strings.TrimSpace(pc.Target.Features[i])
	}
	pc.Target.Theme = strings.TrimSpace(pc.Target.Theme)
	pc.JobsDir = strings.TrimSpace(pc.JobsDir)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Loop.MaxIterations < 1 {
		return fmt.Errorf("loop.max_iterations must be >= 1")
	}
	if pc.Target.RTP <= 0 || pc.Target.RTP >= 100 {
		return fmt.Errorf("target.rtp must be between 0 and 100 exclusive")
	}
	if pc.Target.MaxWin < 0 {
		return fmt.Errorf("target.max_win must not be negative")
	}
	for i, market := range pc.Target.Markets {
		if market == "" {
			return fmt.Errorf("target.markets[%d] is empty", i)
		}
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return base
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.ArkainProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure arkain dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
