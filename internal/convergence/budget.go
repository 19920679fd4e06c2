package convergence

import (
	"fmt"
	"sort"
)

// BudgetReport is the quick component-sum check for a proposed RTP budget,
// run before any simulation exists.
type BudgetReport struct {
	Target     float64            `json:"target_rtp"`
	Sum        float64            `json:"component_sum"`
	Gap        float64            `json:"gap"`
	Balanced   bool               `json:"balanced"`
	Components map[string]float64 `json:"components"`
	Warnings   []string           `json:"warnings,omitempty"`
	Summary    string             `json:"summary"`
}

// CheckRTPBudget verifies a proposed breakdown sums to the target RTP within
// half a percentage point and flags implausible component allocations.
func CheckRTPBudget(target float64, components map[string]float64) BudgetReport {
	report := BudgetReport{Target: target, Components: components}

	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := components[name]
		report.Sum += value
		switch {
		case value < 0:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Component %q is negative (%.1f) — RTP contributions cannot be negative", name, value))
		case value > 60:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Component %q carries %.1f%% — over 60%% in a single feature is implausible", name, value))
		}
		if normalizeComponent(name) == "jackpot" && value > 5 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Jackpot contribution %.1f%% exceeds the typical 5%% ceiling", value))
		}
	}
	if base, ok := baseGameComponent(components); ok && base < 20 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Base game carries only %.1f%% — under 20%% makes the base game feel dead", base))
	}

	report.Gap = abs(report.Sum - target)
	report.Balanced = report.Gap <= 0.5
	state := "balanced"
	if !report.Balanced {
		state = "unbalanced"
	}
	report.Summary = fmt.Sprintf("%s — components sum to %.1f%% against target %.1f%% (gap %.1f), %d warning(s)",
		state, report.Sum, target, report.Gap, len(report.Warnings))
	return report
}

func baseGameComponent(components map[string]float64) (float64, bool) {
	for name, value := range components {
		normalized := normalizeComponent(name)
		if normalized == "base game" || normalized == "base" {
			return value, true
		}
	}
	return 0, false
}
