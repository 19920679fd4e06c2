// cmd/arkain/checks.go
//
// Standalone validator subcommands: each runs one checker over a job's
// artifacts (or over flag-supplied inputs) and prints the structured report
// as JSON. Exit status reflects the verdict so the commands compose in
// scripts and CI.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/artifact"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/compliance"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/convergence"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/gdd"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/slotmath"
)

func runAudit(args []string) error {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	job := fs.String("job", "", "job name or directory")
	if err := fs.Parse(args); err != nil {
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
	doc, err := store.ReadText(artifact.DesignDoc)
	if err != nil {
		return err
	}
	report := gdd.AuditQuality(doc)
	if err := printJSON(report); err != nil {
		return err
	}
	if report.Grade == "D" {
		return fmt.Errorf("document quality verdict: %s (grade %s)", report.Verdict, report.Grade)
	}
	return nil
}

func runSanity(args []string) error {
	fs := flag.NewFlagSet("sanity", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	job := fs.String("job", "", "job name or directory")
	if err := fs.Parse(args); err != nil {
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

	tableData, err := store.Read(artifact.PaytableCSV)
	if err != nil {
		return err
	}
	table, err := slotmath.ParsePaytable(bytes.NewReader(tableData))
	if err != nil {
		return err
	}
	reelsData, err := store.Read(artifact.ReelStripsCSV)
	if err != nil {
		return err
	}
	reels, err := slotmath.ParseReelStrips(bytes.NewReader(reelsData))
	if err != nil {
		return err
	}

	report := slotmath.CheckSanity(table, reels)
	if err := printJSON(report); err != nil {
		return err
	}
	if report.Verdict == slotmath.VerdictFail {
		return fmt.Errorf("sanity verdict: %s", report.VerdictLabel)
	}
	return nil
}

func runComply(args []string) error {
	fs := flag.NewFlagSet("comply", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	job := fs.String("job", "", "job to write the scan into (optional)")
	var markets, features listFlag
	fs.Var(&markets, "markets", "target markets (comma separated, defaults from config)")
	fs.Var(&features, "features", "proposed features (comma separated, defaults from config)")
	rtp := fs.Float64("rtp", 0, "proposed RTP percentage (defaults from config)")
	maxWin := fs.Int("max-win", 0, "proposed max win multiplier (defaults from config)")
	theme := fs.String("theme", "", "proposed theme (defaults from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadProject(*project)
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(cfg)
	if err != nil {
		return err
	}

	proposal := proposalFromTarget(cfg.Target())
	if len(markets) > 0 {
		proposal.Jurisdictions = markets
	}
	if len(features) > 0 {
		proposal.Features = features
	}
	if *rtp != 0 {
		proposal.RTP = *rtp
	}
	if *maxWin != 0 {
		proposal.MaxWin = *maxWin
	}
	if strings.TrimSpace(*theme) != "" {
		proposal.Theme = strings.TrimSpace(*theme)
	}

	scan := compliance.NewChecker(profiles).Run(proposal)
	if strings.TrimSpace(*job) != "" {
		store, err := openJobStore(cfg, *job)
		if err != nil {
			return err
		}
		if err := store.WriteJSON(artifact.ComplianceScan, scan); err != nil {
			return err
		}
	}
	if err := printJSON(scan); err != nil {
		return err
	}
	if scan.Verdict == compliance.VerdictBlocked {
		return fmt.Errorf("compliance verdict: %s", scan.Verdict)
	}
	return nil
}

func proposalFromTarget(target convergence.Targets) compliance.Proposal {
	return compliance.Proposal{
		Jurisdictions: target.Markets,
		RTP:           target.RTP,
		MaxWin:        target.MaxWin,
		Features:      target.Features,
		Theme:         target.Theme,
	}
}

func runBudget(args []string) error {
	fs := flag.NewFlagSet("budget", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	target := fs.Float64("target", 0, "target RTP percentage (defaults from config)")
	var components listFlag
	fs.Var(&components, "components", "breakdown as name=value pairs (comma separated)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadProject(*project)
	if err != nil {
		return err
	}
	goal := *target
	if goal == 0 {
		goal = cfg.Target().RTP
	}
	if len(components) == 0 {
		return fmt.Errorf("-components is required (e.g. -components base_game=60,free_spins=30)")
	}
	breakdown := make(map[string]float64, len(components))
	for _, pair := range components {
		name, raw, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("expected name=value, got %q", pair)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("component %q: %w", name, err)
		}
		breakdown[strings.TrimSpace(name)] = value
	}

	report := convergence.CheckRTPBudget(goal, breakdown)
	if err := printJSON(report); err != nil {
		return err
	}
	if !report.Balanced {
		return fmt.Errorf("breakdown sums to %.2f%%, %.2f%% away from the %.2f%% target",
			report.Sum, report.Gap, report.Target)
	}
	return nil
}
