// Package convergence cross-checks the three job artifacts — design
// document, simulation record, compliance scan — for mutual consistency and
// produces the per-iteration convergence report the loop controller acts on.
package convergence

import (
	"fmt"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/compliance"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/gdd"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/slotmath"
)

// Conflict severities. BLOCKER stops convergence outright; HIGH also blocks
// convergence but is distinguishable in reporting.
const (
	SeverityBlocker = "BLOCKER"
	SeverityHigh    = "HIGH"
)

// Conflict owners: who must act to resolve the conflict.
const (
	OwnerDesigner          = "designer"
	OwnerMathematician     = "mathematician"
	OwnerComplianceOfficer = "compliance_officer"
)

// Report verdicts.
const (
	VerdictConverged    = "CONVERGED"
	VerdictNotConverged = "NOT_CONVERGED"
	VerdictMarginal     = "MARGINAL"
)

// Conflict is one cross-artifact inconsistency with a targeted fix
// instruction attributed to the owner who must resolve it. Section names
// the design-document section a designer fix targets, when one applies.
type Conflict struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
	Fix      string `json:"fix"`
	Owner    string `json:"owner"`
	Section  string `json:"section,omitempty"`
}

// Report is the aggregate verdict for one loop iteration. Never mutated
// after creation; the loop appends each instance to its history.
type Report struct {
	Converged bool       `json:"converged"`
	Verdict   string     `json:"verdict"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
	Passed    []string   `json:"checks_passed,omitempty"`
	Summary   string     `json:"summary"`

	// Sub-reports folded into this iteration's evaluation, for display.
	Audit      *gdd.AuditReport `json:"audit,omitempty"`
	Sanity     *slotmath.Report `json:"sanity,omitempty"`
	Compliance *compliance.Scan `json:"compliance,omitempty"`
}

// Blockers returns the conflicts at BLOCKER severity.
func (r Report) Blockers() []Conflict {
	return r.bySeverity(SeverityBlocker)
}

// Highs returns the conflicts at HIGH severity.
func (r Report) Highs() []Conflict {
	return r.bySeverity(SeverityHigh)
}

func (r Report) bySeverity(severity string) []Conflict {
	var out []Conflict
	for _, conflict := range r.Conflicts {
		if conflict.Severity == severity {
			out = append(out, conflict)
		}
	}
	return out
}

// OwnedBy returns the conflicts attributed to one owner.
func (r Report) OwnedBy(owner string) []Conflict {
	var out []Conflict
	for _, conflict := range r.Conflicts {
		if conflict.Owner == owner {
			out = append(out, conflict)
		}
	}
	return out
}

// finish derives the verdict from the collected findings. Any BLOCKER, or
// any HIGH, means not converged; more than 3 warnings with no conflicts is
// marginal; otherwise converged. A marginal report still counts as
// converged for loop-termination purposes: every remaining finding is
// non-actionable by definition.
func (r *Report) finish() {
	switch {
	case len(r.Conflicts) > 0:
		r.Verdict = VerdictNotConverged
	case len(r.Warnings) > 3:
		r.Verdict = VerdictMarginal
		r.Converged = true
	default:
		r.Verdict = VerdictConverged
		r.Converged = true
	}
	r.Summary = fmt.Sprintf("%s — %d blocker(s), %d high(s), %d warning(s), %d check(s) passed",
		r.Verdict, len(r.Blockers()), len(r.Highs()), len(r.Warnings), len(r.Passed))
}
