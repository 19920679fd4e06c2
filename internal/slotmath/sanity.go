package slotmath

import (
	"fmt"
	"sort"
	"strings"
)

// Verdict is the 4-tier outcome scale shared by the structural validators.
// Order matters: adding issues can only move a report toward Fail.
type Verdict int

const (
	VerdictFail Verdict = iota
	VerdictNeedsFixes
	VerdictMarginal
	VerdictPass
)

// String returns the report label for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictFail:
		return "FAIL"
	case VerdictNeedsFixes:
		return "NEEDS_FIXES"
	case VerdictMarginal:
		return "MARGINAL"
	default:
		return "PASS"
	}
}

// Rank exposes the ordering for monotonicity checks: lower is worse.
func (v Verdict) Rank() int { return int(v) }

// Issue is one structural finding. Blocker issues force a FAIL verdict.
type Issue struct {
	Type    string `json:"type"`
	Detail  string `json:"detail"`
	Fix     string `json:"fix,omitempty"`
	Blocker bool   `json:"blocker,omitempty"`
}

// Report is the sanity checker's structured output. Data-quality findings
// land here, never in an error.
type Report struct {
	Verdict         Verdict  `json:"-"`
	VerdictLabel    string   `json:"verdict"`
	Issues          []Issue  `json:"issues"`
	Warnings        []Issue  `json:"warnings"`
	ChecksPassed    []string `json:"checks_passed"`
	SymbolCount     int      `json:"symbol_count"`
	ReelSymbolCount int      `json:"reel_symbol_count"`
	Summary         string   `json:"summary"`
}

// MinReelPositions is the smallest reel strip considered statistically
// meaningful for weighting.
const MinReelPositions = 20

// CheckSanity validates the structural integrity of a paytable and its reel
// strips: monotonic pays per tier, no all-zero standard symbols, wild and
// scatter presence, symbol cross-reference between reels and paytable, and
// reel population. Pass nil for a missing table; that is a blocker finding,
// not an error.
func CheckSanity(table *Paytable, reels []ReelStrip) Report {
	report := Report{}

	if table == nil {
		report.Issues = append(report.Issues, Issue{
			Type:    "MISSING_PAYTABLE",
			Detail:  "paytable table not available",
			Fix:     "Mathematician must produce paytable.csv",
			Blocker: true,
		})
		return finishReport(report)
	}

	if len(table.Symbols) == 0 {
		report.Issues = append(report.Issues, Issue{
			Type:    "EMPTY_PAYTABLE",
			Detail:  "paytable has no data rows",
			Fix:     "Mathematician must regenerate paytable with all symbols",
			Blocker: true,
		})
	} else {
		report.ChecksPassed = append(report.ChecksPassed, fmt.Sprintf("Paytable: %d symbols loaded", len(table.Symbols)))
	}
	report.SymbolCount = len(table.Symbols)

	checkMonotonicPays(table, &report)
	checkZeroPays(table, &report)
	checkSpecialPresence(table, &report)
	checkReels(table, reels, &report)

	if top := maxSinglePay(table); top > 0 {
		report.ChecksPassed = append(report.ChecksPassed, fmt.Sprintf("Highest single pay: %gx", top))
	}

	return finishReport(report)
}

// checkMonotonicPays flags any non-special symbol whose pay decreases as the
// kind count increases. Zero entries mean "tier not applicable" and are
// skipped rather than compared.
func checkMonotonicPays(table *Paytable, report *Report) {
	found := false
	for _, symbol := range table.Symbols {
		if symbol.Class != ClassStandard {
			continue
		}
		prev := -1.0
		for _, tier := range table.Tiers {
			value := symbol.Pays[tier]
			if value <= 0 {
				continue
			}
			if prev > 0 && value < prev {
				found = true
				report.Issues = append(report.Issues, Issue{
					Type:   "NON_MONOTONIC",
					Detail: fmt.Sprintf("Symbol %q: %dOAK pay (%g) < previous tier (%g)", symbol.Name, tier, value, prev),
					Fix:    fmt.Sprintf("Fix paytable: %dOAK for %q must be >= %g", tier, symbol.Name, prev),
				})
			}
			prev = value
		}
	}
	if !found {
		report.ChecksPassed = append(report.ChecksPassed, "Pay values monotonically increasing")
	}
}

func checkZeroPays(table *Paytable, report *Report) {
	for _, symbol := range table.Symbols {
		if symbol.Class != ClassStandard {
			continue
		}
		if symbol.MaxPay() == 0 {
			report.Warnings = append(report.Warnings, Issue{
				Type:   "ZERO_PAY",
				Detail: fmt.Sprintf("Symbol %q pays 0 across all tiers", symbol.Name),
				Fix:    fmt.Sprintf("Add pay values for %q or remove it from the paytable if it is a special symbol", symbol.Name),
			})
		}
	}
}

// checkSpecialPresence warns (not blocks) on a missing wild or scatter:
// some games validly omit them.
func checkSpecialPresence(table *Paytable, report *Report) {
	hasWild, hasScatter := false, false
	for _, symbol := range table.Symbols {
		switch symbol.Class {
		case ClassWild:
			hasWild = true
		case ClassScatter:
			hasScatter = true
		}
	}
	if hasWild {
		report.ChecksPassed = append(report.ChecksPassed, "WILD symbol present")
	} else {
		report.Warnings = append(report.Warnings, Issue{
			Type:   "NO_WILD",
			Detail: "No WILD symbol found in paytable",
			Fix:    "Add a WILD symbol — nearly all slot games need one",
		})
	}
	if hasScatter {
		report.ChecksPassed = append(report.ChecksPassed, "SCATTER/BONUS symbol present")
	} else {
		report.Warnings = append(report.Warnings, Issue{
			Type:   "NO_SCATTER",
			Detail: "No SCATTER or BONUS symbol found in paytable",
			Fix:    "Add a SCATTER for the free spins trigger or a BONUS symbol",
		})
	}
}

func checkReels(table *Paytable, reels []ReelStrip, report *Report) {
	if reels == nil {
		report.Issues = append(report.Issues, Issue{
			Type:    "MISSING_REELS",
			Detail:  "reel strip table not available",
			Fix:     "Mathematician must generate the reel strip CSV",
			Blocker: true,
		})
		return
	}

	paytableNames := map[string]string{} // lowercase -> display
	for _, symbol := range table.Symbols {
		paytableNames[strings.ToLower(symbol.Name)] = symbol.Name
	}
	reelNames := map[string]string{}
	positions := 0
	for _, strip := range reels {
		positions += len(strip.Symbols)
		for _, symbol := range strip.Symbols {
			reelNames[strings.ToLower(symbol)] = symbol
		}
		if len(strip.Symbols) < MinReelPositions {
			report.Issues = append(report.Issues, Issue{
				Type:    "SHORT_REEL",
				Detail:  fmt.Sprintf("Reel %q has only %d positions (minimum %d)", strip.Name, len(strip.Symbols), MinReelPositions),
				Fix:     fmt.Sprintf("Extend reel %q to at least %d positions", strip.Name, MinReelPositions),
				Blocker: true,
			})
		}
	}
	report.ReelSymbolCount = len(reelNames)
	report.ChecksPassed = append(report.ChecksPassed,
		fmt.Sprintf("Reel strips: %d reels, %d positions", len(reels), positions))

	onlyOnReels := missingFrom(reelNames, paytableNames)
	if len(onlyOnReels) > 0 {
		report.Issues = append(report.Issues, Issue{
			Type:    "REEL_SYMBOL_MISSING_FROM_PAYTABLE",
			Detail:  fmt.Sprintf("Symbols on reels but NOT in paytable: %s", strings.Join(onlyOnReels, ", ")),
			Fix:     "Add these symbols to the paytable OR remove them from the reel strips",
			Blocker: true,
		})
	} else {
		report.ChecksPassed = append(report.ChecksPassed, "All reel symbols exist in paytable")
	}

	onlyInPaytable := missingFrom(paytableNames, reelNames)
	if len(onlyInPaytable) > 0 {
		report.Warnings = append(report.Warnings, Issue{
			Type:   "PAYTABLE_SYMBOL_NOT_ON_REELS",
			Detail: fmt.Sprintf("Symbols in paytable but NOT on any reel: %s", strings.Join(onlyInPaytable, ", ")),
			Fix:    "Add these symbols to reel strips or mark them as special (WILD substitution only)",
		})
	}
}

// missingFrom returns display names present in from but absent from against,
// sorted for deterministic reports. Matching is case-insensitive.
func missingFrom(from, against map[string]string) []string {
	var missing []string
	for lower, display := range from {
		if _, ok := against[lower]; !ok {
			missing = append(missing, display)
		}
	}
	sort.Strings(missing)
	return missing
}

func maxSinglePay(table *Paytable) float64 {
	var top float64
	for _, symbol := range table.Symbols {
		if pay := symbol.MaxPay(); pay > top {
			top = pay
		}
	}
	return top
}

// finishReport derives the 4-tier verdict: any blocker issue is FAIL, any
// issue at all is NEEDS_FIXES, more than 3 warnings with no issues is
// MARGINAL, otherwise PASS.
func finishReport(report Report) Report {
	blockers := 0
	for _, issue := range report.Issues {
		if issue.Blocker {
			blockers++
		}
	}
	switch {
	case blockers > 0:
		report.Verdict = VerdictFail
	case len(report.Issues) > 0:
		report.Verdict = VerdictNeedsFixes
	case len(report.Warnings) > 3:
		report.Verdict = VerdictMarginal
	default:
		report.Verdict = VerdictPass
	}
	report.VerdictLabel = report.Verdict.String()
	report.Summary = fmt.Sprintf("%s — %d paytable symbols, %d reel symbols, %d issues, %d warnings",
		report.VerdictLabel, report.SymbolCount, report.ReelSymbolCount, len(report.Issues), len(report.Warnings))
	return report
}
