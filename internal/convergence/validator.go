package convergence

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/artifact"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/compliance"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/gdd"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/jurisdiction"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/slotmath"
)

// Targets is the declared game configuration the artifacts must converge on.
type Targets struct {
	RTP      float64  `yaml:"rtp" json:"rtp"`
	MaxWin   int      `yaml:"max_win" json:"max_win"`
	Markets  []string `yaml:"markets" json:"markets"`
	Features []string `yaml:"features" json:"features"`
	Theme    string   `yaml:"theme" json:"theme"`
}

// featureKeywords are the mechanics whose presence in the design document
// implies a correspondingly-named RTP breakdown component should exist.
var featureKeywords = []string{
	"free spins", "cascading", "hold and spin", "bonus buy",
	"expanding wild", "multiplier", "jackpot",
}

// Validator performs the cross-artifact consistency checks no
// single-document validator can do alone.
type Validator struct {
	store    *artifact.Store
	profiles *jurisdiction.Store
	targets  Targets
}

// NewValidator builds a validator over one job's artifacts.
func NewValidator(store *artifact.Store, profiles *jurisdiction.Store, targets Targets) *Validator {
	return &Validator{store: store, profiles: profiles, targets: targets}
}

// Validate reads all artifacts, folds in the single-document validators,
// runs the cross-artifact checks, and derives the iteration verdict.
// Data-quality findings never surface as errors; the error return is
// reserved for unreadable filesystem state.
func (v *Validator) Validate() (Report, error) {
	report := Report{}

	doc, haveDoc, err := v.loadText(artifact.DesignDoc, OwnerDesigner, &report)
	if err != nil {
		return report, err
	}
	_, haveSim, err := v.loadBytes(artifact.SimulationResults, OwnerMathematician, &report)
	if err != nil {
		return report, err
	}
	paytableRaw, havePaytable, err := v.loadBytes(artifact.PaytableCSV, OwnerMathematician, &report)
	if err != nil {
		return report, err
	}
	reelsRaw, haveReels, err := v.loadBytes(artifact.ReelStripsCSV, OwnerMathematician, &report)
	if err != nil {
		return report, err
	}

	var sim artifact.SimulationRecord
	if haveSim {
		if err := v.store.ReadJSON(artifact.SimulationResults, &sim); err != nil {
			report.Conflicts = append(report.Conflicts, Conflict{
				Type:     "MALFORMED_SIMULATION",
				Severity: SeverityBlocker,
				Detail:   fmt.Sprintf("simulation_results.json could not be decoded: %v", err),
				Fix:      "Regenerate the simulation results file",
				Owner:    OwnerMathematician,
			})
			haveSim = false
		}
	}

	var table *slotmath.Paytable
	var reels []slotmath.ReelStrip
	if havePaytable {
		table, err = slotmath.ParsePaytable(bytes.NewReader(paytableRaw))
		if err != nil {
			return report, fmt.Errorf("convergence: parse paytable: %w", err)
		}
	}
	if haveReels {
		reels, err = slotmath.ParseReelStrips(bytes.NewReader(reelsRaw))
		if err != nil {
			return report, fmt.Errorf("convergence: parse reel strips: %w", err)
		}
	}

	// Single-artifact validators.
	if havePaytable || haveReels {
		sanity := slotmath.CheckSanity(table, reels)
		report.Sanity = &sanity
		v.foldSanity(sanity, &report)
	}
	if haveDoc {
		audit := gdd.AuditQuality(doc)
		report.Audit = &audit
		v.foldAudit(audit, &report)
	}
	scan := compliance.NewChecker(v.profiles).Run(compliance.Proposal{
		Jurisdictions: v.targets.Markets,
		RTP:           v.targets.RTP,
		MaxWin:        v.targets.MaxWin,
		Features:      v.targets.Features,
		Theme:         v.targets.Theme,
	})
	report.Compliance = &scan
	v.foldCompliance(scan, &report)

	// Cross-artifact checks.
	if haveSim {
		v.checkBreakdown(sim, &report)
		v.checkRTPDeviation(sim, &report)
		v.checkMaxWin(sim, &report)
	}
	if haveDoc && haveSim {
		v.checkFeatureCosting(doc, sim, &report)
	}
	if havePaytable && table != nil {
		v.checkSymbolSet(table, &report)
	}

	report.finish()
	return report, nil
}

func (v *Validator) loadText(ref artifact.Ref, owner string, report *Report) (string, bool, error) {
	data, ok, err := v.loadBytes(ref, owner, report)
	return string(data), ok, err
}

// loadBytes reads one required artifact. A missing file is a BLOCKER
// "cannot evaluate" conflict that short-circuits the checks depending on
// it; any other read failure is a real error.
func (v *Validator) loadBytes(ref artifact.Ref, owner string, report *Report) ([]byte, bool, error) {
	check := v.store.Check(ref)
	switch check.State {
	case artifact.StateMissing:
		report.Conflicts = append(report.Conflicts, Conflict{
			Type:     "MISSING_ARTIFACT",
			Severity: SeverityBlocker,
			Detail:   fmt.Sprintf("%s not found at %s — cannot evaluate", ref.Name, check.Path),
			Fix:      fmt.Sprintf("Generate %s first", ref.Name),
			Owner:    owner,
		})
		return nil, false, nil
	case artifact.StateReady, artifact.StateInvalid:
		// Invalid JSON is reported by the typed decode below, with detail.
		data, err := v.store.Read(ref)
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	default:
		return nil, false, fmt.Errorf("convergence: check %s: %w", ref.ID, check.Err)
	}
}

func (v *Validator) foldSanity(sanity slotmath.Report, report *Report) {
	for _, issue := range sanity.Issues {
		severity := SeverityHigh
		if issue.Blocker {
			severity = SeverityBlocker
		}
		report.Conflicts = append(report.Conflicts, Conflict{
			Type:     issue.Type,
			Severity: severity,
			Detail:   issue.Detail,
			Fix:      issue.Fix,
			Owner:    OwnerMathematician,
		})
	}
	for _, warning := range sanity.Warnings {
		report.Warnings = append(report.Warnings, warning.Detail)
	}
	report.Passed = append(report.Passed, sanity.ChecksPassed...)
}

// foldAudit turns missing canonical sections into designer-owned conflicts
// carrying the exact section header a patch must target. Sections that are
// merely thin or vague stay warnings: the loop patches structure, not prose
// quality.
func (v *Validator) foldAudit(audit gdd.AuditReport, report *Report) {
	for _, section := range audit.Sections {
		for _, issue := range section.Issues {
			if issue.Type != "MISSING" {
				continue
			}
			fix := ""
			if len(section.FixInstructions) > 0 {
				fix = section.FixInstructions[0]
			}
			report.Conflicts = append(report.Conflicts, Conflict{
				Type:     "MISSING_SECTION",
				Severity: SeverityHigh,
				Detail:   issue.Detail,
				Fix:      fix,
				Owner:    OwnerDesigner,
				Section:  fmt.Sprintf("## %d. %s", section.Num, section.Header),
			})
		}
	}
	if audit.Verdict == "MAJOR_REWRITE_NEEDED" {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Design quality grade %s (%.0f/100) — below production threshold", audit.Grade, audit.AverageScore))
	}
	report.Passed = append(report.Passed,
		fmt.Sprintf("design audit: %d/%d sections present", audit.SectionsFound, audit.SectionsExpected))
}

// foldCompliance re-attributes the scan's findings: banned-feature hits are
// design changes, RTP and cap violations are math changes.
func (v *Validator) foldCompliance(scan compliance.Scan, report *Report) {
	for _, market := range scan.Markets {
		for _, check := range market.Checks {
			switch {
			case check.Status == compliance.StatusFail && check.Name == "banned_features":
				report.Conflicts = append(report.Conflicts, Conflict{
					Type:     "COMPLIANCE_BANNED_FEATURE",
					Severity: SeverityBlocker,
					Detail:   market.Market + ": " + check.Detail,
					Fix:      fmt.Sprintf("Remove the banned feature(s) from the design for %s, or drop %s from the target markets", market.Market, market.Market),
					Owner:    OwnerDesigner,
					Section:  "## 8. Feature Design",
				})
			case check.Status == compliance.StatusFail:
				report.Conflicts = append(report.Conflicts, Conflict{
					Type:     "COMPLIANCE_" + strings.ToUpper(check.Name),
					Severity: SeverityBlocker,
					Detail:   market.Market + ": " + check.Detail,
					Fix:      fmt.Sprintf("Rework the math model to satisfy %s requirements", market.Market),
					Owner:    OwnerMathematician,
				})
			}
		}
	}
	report.Warnings = append(report.Warnings, scan.Warnings...)
	if scan.Verdict == compliance.VerdictClear {
		report.Passed = append(report.Passed,
			fmt.Sprintf("compliance: %d market(s) clear", len(scan.Markets)))
	}
}

// checkBreakdown reconciles the RTP breakdown against the measured total.
// A gap over one percentage point means the breakdown and the total were
// produced inconsistently.
func (v *Validator) checkBreakdown(sim artifact.SimulationRecord, report *Report) {
	if len(sim.RTPBreakdown) == 0 {
		report.Warnings = append(report.Warnings, "Simulation has no RTP breakdown — feature costing cannot be verified")
		return
	}
	sum := sim.BreakdownSum()
	gap := abs(sum - sim.RTP)
	if gap > 1.0 {
		report.Conflicts = append(report.Conflicts, Conflict{
			Type:     "RTP_BREAKDOWN_MISMATCH",
			Severity: SeverityHigh,
			Detail:   fmt.Sprintf("Breakdown components sum to %.1f%% but measured RTP is %.1f%% (gap %.1f)", sum, sim.RTP, gap),
			Fix:      "Re-derive the RTP breakdown so components account for the full measured RTP",
			Owner:    OwnerMathematician,
		})
		return
	}
	report.Passed = append(report.Passed, fmt.Sprintf("RTP breakdown reconciles (%.1f%% vs %.1f%%)", sum, sim.RTP))
}

// checkRTPDeviation targets proximity to the declared target, a tighter
// check than jurisdiction legality.
func (v *Validator) checkRTPDeviation(sim artifact.SimulationRecord, report *Report) {
	deviation := abs(sim.RTP - v.targets.RTP)
	switch {
	case deviation > 1.0:
		report.Conflicts = append(report.Conflicts, Conflict{
			Type:     "RTP_DEVIATION",
			Severity: SeverityBlocker,
			Detail:   fmt.Sprintf("Measured RTP %.2f%% deviates %.2f from target %.2f%%", sim.RTP, deviation, v.targets.RTP),
			Fix:      "Re-tune reel weights and pay values to land within 1.0 of target RTP",
			Owner:    OwnerMathematician,
		})
	case deviation > 0.5:
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Measured RTP %.2f%% is %.2f from target %.2f%% — within tolerance but drifting", sim.RTP, deviation, v.targets.RTP))
	default:
		report.Passed = append(report.Passed, fmt.Sprintf("RTP on target (%.2f%% vs %.2f%%)", sim.RTP, v.targets.RTP))
	}
}

// checkMaxWin compares the measured max win against the design target and
// against the tightest jurisdiction cap.
func (v *Validator) checkMaxWin(sim artifact.SimulationRecord, report *Report) {
	if v.targets.MaxWin > 0 && sim.MaxWinMultiplier > float64(v.targets.MaxWin)*1.2 {
		report.Conflicts = append(report.Conflicts, Conflict{
			Type:     "MAX_WIN_OVER_TARGET",
			Severity: SeverityHigh,
			Detail:   fmt.Sprintf("Measured max win %.0fx exceeds design target %dx by more than 20%%", sim.MaxWinMultiplier, v.targets.MaxWin),
			Fix:      "Cap stacking mechanics (multiplier ceilings, retrigger limits) to pull max win toward target",
			Owner:    OwnerMathematician,
		})
	}
	intersection := v.profiles.Intersect(v.targets.Markets)
	if intersection.MaxWinCap != nil && sim.MaxWinMultiplier > float64(*intersection.MaxWinCap) {
		report.Conflicts = append(report.Conflicts, Conflict{
			Type:     "MAX_WIN_OVER_CAP",
			Severity: SeverityBlocker,
			Detail:   fmt.Sprintf("Measured max win %.0fx exceeds the tightest jurisdiction cap %dx", sim.MaxWinMultiplier, *intersection.MaxWinCap),
			Fix:      fmt.Sprintf("Implement a hard win cap at %dx, or use market-specific strip variants for capped markets", *intersection.MaxWinCap),
			Owner:    OwnerMathematician,
		})
	}
}

// checkFeatureCosting verifies each feature mechanic mentioned in the design
// document has a correspondingly-named RTP breakdown component. Absence is
// only a warning: naming conventions vary.
func (v *Validator) checkFeatureCosting(doc string, sim artifact.SimulationRecord, report *Report) {
	docLower := strings.ToLower(doc)
	components := make([]string, 0, len(sim.RTPBreakdown))
	for name := range sim.RTPBreakdown {
		components = append(components, normalizeComponent(name))
	}
	sort.Strings(components)

	costed := 0
	for _, keyword := range featureKeywords {
		if !strings.Contains(docLower, keyword) {
			continue
		}
		token := normalizeComponent(keyword)
		found := false
		for _, component := range components {
			if strings.Contains(component, token) || strings.Contains(token, component) {
				found = true
				break
			}
		}
		if found {
			costed++
			continue
		}
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Design mentions %q but the RTP breakdown has no matching component — uncosted feature", keyword))
	}
	if costed > 0 {
		report.Passed = append(report.Passed, fmt.Sprintf("feature costing: %d design feature(s) have breakdown components", costed))
	}
}

// checkSymbolSet flags an unusually thin paytable, usually missing low-pay
// royals.
func (v *Validator) checkSymbolSet(table *slotmath.Paytable, report *Report) {
	if len(table.Symbols) < 8 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Only %d paytable symbols — unusually thin, likely missing low-pay royals", len(table.Symbols)))
		return
	}
	report.Passed = append(report.Passed, fmt.Sprintf("symbol set size ok (%d symbols)", len(table.Symbols)))
}

// normalizeComponent collapses naming-convention differences between design
// prose and breakdown keys ("Free Spins" vs "free_spins").
func normalizeComponent(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	lower = strings.ReplaceAll(lower, "-", " ")
	lower = strings.ReplaceAll(lower, "_", " ")
	// Singular/plural drift is common in breakdown keys (jackpot/jackpots).
	lower = strings.TrimSuffix(lower, "s")
	return lower
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
