// Package loop runs the convergence cycle over one job's artifacts:
// OBSERVE (compliance re-scan), ORIENT_DECIDE (validators + convergence
// report), then ACT (targeted design patches and simulation re-runs
// partitioned by owner), bounded by a fixed iteration budget. Termination
// is always reached: genuine convergence or budget exhaustion, never an
// unbounded retry.
package loop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/artifact"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/compliance"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/convergence"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/gdd"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/history"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/jurisdiction"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/logbook"
)

// DesignReviser produces replacement body text for one design-document
// section. Implementations are external (LLM-backed in production); the
// loop only splices the result.
type DesignReviser interface {
	ReviseSection(ctx context.Context, document, header, instructions string) (string, error)
}

// Simulator regenerates the numeric simulation record given revision
// instructions. The record is fully replaced, never patched.
type Simulator interface {
	Rerun(ctx context.Context, design string, instructions []string) (artifact.SimulationRecord, error)
}

// Options configures one loop run.
type Options struct {
	MaxIterations int
	// ForceContinue accepts the best-available artifacts on budget
	// exhaustion when only non-blocking findings remain, instead of
	// failing the run. Matches the original pipeline policy; disable for
	// a hard NOT_CONVERGED result.
	ForceContinue bool
	Targets       convergence.Targets
}

// HistoryEntry is one iteration's snapshot in the append-only run history.
type HistoryEntry struct {
	Iteration    int    `json:"iteration"`
	Converged    bool   `json:"converged"`
	BlockerCount int    `json:"blocker_count"`
	HighCount    int    `json:"high_count"`
	WarningCount int    `json:"warning_count"`
	Summary      string `json:"summary"`
}

// Result is the loop's terminal outcome. Forced marks budget-exhaustion
// acceptance: the convergence status is surfaced verbatim, never silently
// upgraded to success.
type Result struct {
	Converged  bool               `json:"converged"`
	Forced     bool               `json:"forced"`
	Iterations int                `json:"iterations"`
	Final      convergence.Report `json:"final_report"`
	History    []HistoryEntry     `json:"history"`
}

// Controller orchestrates the convergence loop.
type Controller struct {
	store    *artifact.Store
	profiles *jurisdiction.Store
	reviser  DesignReviser
	sim      Simulator
	log      *logbook.Logbook
	runs     *history.Store
	opts     Options
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithLogbook attaches a run logbook.
func WithLogbook(log *logbook.Logbook) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithHistoryStore attaches the persistent run history database.
func WithHistoryStore(runs *history.Store) ControllerOption {
	return func(c *Controller) { c.runs = runs }
}

// NewController wires a loop over one job's artifact store.
func NewController(store *artifact.Store, profiles *jurisdiction.Store, reviser DesignReviser, sim Simulator, opts Options, ctrlOpts ...ControllerOption) (*Controller, error) {
	if opts.MaxIterations < 1 {
		return nil, fmt.Errorf("loop: max iterations must be >= 1, got %d", opts.MaxIterations)
	}
	if reviser == nil || sim == nil {
		return nil, fmt.Errorf("loop: reviser and simulator are required")
	}
	controller := &Controller{
		store:    store,
		profiles: profiles,
		reviser:  reviser,
		sim:      sim,
		opts:     opts,
	}
	for _, opt := range ctrlOpts {
		opt(controller)
	}
	return controller, nil
}

// Run executes the loop until convergence or budget exhaustion. The final
// iteration never acts: its report is the run's terminal state.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	result := Result{}
	var runID string
	if c.runs != nil {
		run, err := c.runs.BeginRun(c.store.Job().Name())
		if err != nil {
			return result, err
		}
		runID = run.ID
	}

	validator := convergence.NewValidator(c.store, c.profiles, c.opts.Targets)

	for iteration := 1; iteration <= c.opts.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("loop: iteration %d: %w", iteration, err)
		}

		// OBSERVE: refresh the compliance scan every iteration regardless
		// of what changed.
		scan := compliance.NewChecker(c.profiles).Run(compliance.Proposal{
			Jurisdictions: c.opts.Targets.Markets,
			RTP:           c.opts.Targets.RTP,
			MaxWin:        c.opts.Targets.MaxWin,
			Features:      c.opts.Targets.Features,
			Theme:         c.opts.Targets.Theme,
		})
		if err := c.store.WriteJSON(artifact.ComplianceScan, scan); err != nil {
			return result, err
		}
		c.log.Phase(iteration, "OBSERVE", "compliance re-scan: %s", scan.Verdict)

		// ORIENT_DECIDE: full validation pass.
		report, err := validator.Validate()
		if err != nil {
			return result, err
		}
		c.log.Phase(iteration, "ORIENT_DECIDE", "%s", report.Summary)

		entry := HistoryEntry{
			Iteration:    iteration,
			Converged:    report.Converged,
			BlockerCount: len(report.Blockers()),
			HighCount:    len(report.Highs()),
			WarningCount: len(report.Warnings),
			Summary:      report.Summary,
		}
		result.History = append(result.History, entry)
		result.Final = report
		result.Iterations = iteration
		c.recordIteration(runID, entry, report)
		if err := c.store.WriteJSON(artifact.ConvergenceHistory, result.History); err != nil {
			return result, err
		}

		if report.Converged {
			result.Converged = true
			break
		}

		if iteration == c.opts.MaxIterations {
			// Budget exhausted. With force-continue and only non-blocking
			// findings left, accept the best-available artifacts with the
			// residual risk spelled out.
			if c.opts.ForceContinue && len(report.Blockers()) == 0 {
				result.Converged = true
				result.Forced = true
				result.Final.Converged = true
				for _, high := range report.Highs() {
					result.Final.Warnings = append(result.Final.Warnings,
						fmt.Sprintf("accepted unresolved %s: %s", high.Type, high.Detail))
				}
				result.Final.Warnings = append(result.Final.Warnings,
					fmt.Sprintf("iteration budget (%d) exhausted — accepting best available artifacts", c.opts.MaxIterations))
				c.log.Warn("budget exhausted after %d iterations, force-accepting with %d warning(s)",
					iteration, len(result.Final.Warnings))
			} else {
				c.log.Warn("budget exhausted after %d iterations, not converged (%d blocker(s))",
					iteration, len(report.Blockers()))
			}
			break
		}

		// ACT: partition actionable conflicts by owner.
		if err := c.act(ctx, iteration, report); err != nil {
			return result, err
		}
	}

	c.finishRun(runID, result)
	return result, nil
}

// act issues targeted fixes: section patches for designer-owned conflicts,
// one simulation re-run for mathematician-owned conflicts. Owners with no
// actionable conflicts are skipped.
func (c *Controller) act(ctx context.Context, iteration int, report convergence.Report) error {
	designFixes := report.OwnedBy(convergence.OwnerDesigner)
	mathFixes := report.OwnedBy(convergence.OwnerMathematician)

	for _, conflict := range designFixes {
		if err := c.applyDesignFix(ctx, iteration, conflict); err != nil {
			return err
		}
	}

	if len(mathFixes) > 0 {
		instructions := make([]string, 0, len(mathFixes)+len(designFixes))
		for _, conflict := range mathFixes {
			instructions = append(instructions, conflict.Fix)
		}
		// Unresolved design conflicts travel along as context: the math
		// usually has to re-derive around a changed design.
		for _, conflict := range designFixes {
			instructions = append(instructions, "design context: "+conflict.Detail)
		}
		c.log.Phase(iteration, "ACT", "re-simulation with %d instruction(s)", len(instructions))

		design, err := c.store.ReadText(artifact.DesignDoc)
		if err != nil {
			design = "" // a missing design is itself one of the conflicts
		}
		record, err := c.sim.Rerun(ctx, design, instructions)
		if err != nil {
			return fmt.Errorf("loop: re-simulation: %w", err)
		}
		if err := c.store.WriteSimulation(record); err != nil {
			return err
		}
	}
	return nil
}

// applyDesignFix revises one section. Conflicts that name a section are
// patched in place (or appended when the section is absent entirely);
// conflicts without a section target, like a missing document, are left
// for the next observation after the reviser regenerates from scratch.
func (c *Controller) applyDesignFix(ctx context.Context, iteration int, conflict convergence.Conflict) error {
	if conflict.Section == "" {
		c.log.Phase(iteration, "ACT", "designer fix without section target: %s", conflict.Type)
		return nil
	}
	doc, err := c.store.ReadText(artifact.DesignDoc)
	if err != nil {
		c.log.Warn("design fix skipped, document unreadable: %v", err)
		return nil
	}

	header := conflict.Section
	if section, ok := gdd.FindSection(doc, conflict.Section); ok {
		header = section.HeaderLine
	}
	c.log.Phase(iteration, "ACT", "revise %s (%s)", header, conflict.Type)

	body, err := c.reviser.ReviseSection(ctx, doc, header, conflict.Fix)
	if err != nil {
		return fmt.Errorf("loop: revise %s: %w", header, err)
	}

	applier := gdd.NewApplier(artifact.DesignDoc.Path(c.store.Job()))
	if _, err := applier.Apply(header, body, conflict.Fix); err != nil {
		var notFound *gdd.SectionNotFoundError
		if errors.As(err, &notFound) {
			// The section does not exist yet: append it instead.
			appended := strings.TrimRight(doc, "\n") + "\n\n" + conflict.Section + "\n" + strings.TrimSpace(body) + "\n"
			return c.store.Write(artifact.DesignDoc, []byte(appended))
		}
		return fmt.Errorf("loop: patch %s: %w", header, err)
	}
	return nil
}

func (c *Controller) recordIteration(runID string, entry HistoryEntry, report convergence.Report) {
	if c.runs == nil || runID == "" {
		return
	}
	record := history.IterationRecord{
		Iteration: entry.Iteration,
		Converged: entry.Converged,
		Verdict:   report.Verdict,
		Blockers:  entry.BlockerCount,
		Highs:     entry.HighCount,
		Warnings:  entry.WarningCount,
		Summary:   entry.Summary,
	}
	if err := c.runs.RecordIteration(runID, record); err != nil {
		c.log.Error("record iteration: %v", err)
	}
}

func (c *Controller) finishRun(runID string, result Result) {
	if c.runs == nil || runID == "" {
		return
	}
	verdict := result.Final.Verdict
	if verdict == "" {
		verdict = convergence.VerdictNotConverged
	}
	if err := c.runs.FinishRun(runID, result.Converged, result.Forced, result.Iterations, verdict); err != nil {
		c.log.Error("finish run: %v", err)
	}
}
