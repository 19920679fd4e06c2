package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	arkainDir := filepath.Join(projectDir, ".arkain")
	if err := os.MkdirAll(arkainDir, 0755); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, ArkainProjectDir: arkainDir, Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.Loop().MaxIterations != defaultMaxIterations {
		t.Fatalf("expected default max iterations %d, got %d", defaultMaxIterations, c.Loop().MaxIterations)
	}
	if !c.Loop().ForceContinue {
		t.Fatal("expected force_continue default true")
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	arkainDir := filepath.Join(projectDir, ".arkain")
	if err := os.MkdirAll(arkainDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
loop:
  max_iterations: 5
  force_continue: false
target:
  rtp: 95.5
  max_win: 10000
  markets:
    - " UK "
    - Sweden
  features:
    - free_spins
  theme: norse mythology
jobs_dir: output/jobs
`)
	if err := os.WriteFile(filepath.Join(arkainDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, ArkainProjectDir: arkainDir, Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.Loop().MaxIterations != 5 || c.Loop().ForceContinue {
		t.Fatalf("loop=%+v", c.Loop())
	}
	target := c.Target()
	if target.RTP != 95.5 || target.MaxWin != 10000 {
		t.Fatalf("target=%+v", target)
	}
	if target.Markets[0] != "UK" {
		t.Fatalf("expected markets to be trimmed, got %q", target.Markets[0])
	}
	if !strings.HasPrefix(c.JobsDir(), projectDir) {
		t.Fatalf("expected jobs dir to be resolved, got %s", c.JobsDir())
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	projectDir := t.TempDir()
	arkainDir := filepath.Join(projectDir, ".arkain")
	if err := os.MkdirAll(arkainDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
loop:
  max_iterations: -1
`)
	if err := os.WriteFile(filepath.Join(arkainDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, ArkainProjectDir: arkainDir, Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestInitArkainDirSeedsDefaults(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitArkainDir(projectDir); err != nil {
		t.Fatalf("InitArkainDir: %v", err)
	}
	for _, sub := range []string{"logs", "state", "profiles"} {
		if _, err := os.Stat(filepath.Join(projectDir, ".arkain", sub)); err != nil {
			t.Fatalf("missing %s: %v", sub, err)
		}
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Loop().MaxIterations != 3 {
		t.Fatalf("seeded config loop=%+v", cfg.Loop())
	}
	// Init must not clobber an existing config.
	if err := cfg.SetTarget(cfg.Target()); err != nil {
		t.Fatal(err)
	}
	if err := InitArkainDir(projectDir); err != nil {
		t.Fatal(err)
	}
	again, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if again.Loop().MaxIterations != 3 {
		t.Fatalf("config clobbered: %+v", again.Loop())
	}
}
