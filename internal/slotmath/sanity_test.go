package slotmath

import (
	"strings"
	"testing"
)

func standardSymbol(name string, pays map[int]float64) Symbol {
	return Symbol{Name: name, Class: Classify(name), Pays: pays}
}

func healthyTable() *Paytable {
	return &Paytable{
		Tiers: []int{3, 4, 5},
		Symbols: []Symbol{
			standardSymbol("Ace", map[int]float64{3: 1.0, 4: 2.5, 5: 10.0}),
			standardSymbol("King", map[int]float64{3: 0.8, 4: 2.0, 5: 8.0}),
			standardSymbol("Wild", map[int]float64{}),
			standardSymbol("Scatter", map[int]float64{}),
		},
	}
}

func healthyReels() []ReelStrip {
	symbols := []string{"Ace", "King", "Wild", "Scatter"}
	strip := make([]string, 0, 24)
	for len(strip) < 24 {
		strip = append(strip, symbols[len(strip)%len(symbols)])
	}
	return []ReelStrip{
		{Name: "Reel1", Symbols: strip},
		{Name: "Reel2", Symbols: strip},
		{Name: "Reel3", Symbols: strip},
	}
}

func TestCheckSanityHealthyModelPasses(t *testing.T) {
	report := CheckSanity(healthyTable(), healthyReels())
	if report.Verdict != VerdictPass {
		t.Fatalf("verdict=%s want PASS; issues=%v warnings=%v", report.Verdict, report.Issues, report.Warnings)
	}
}

func TestCheckSanityNonMonotonicPay(t *testing.T) {
	// 3OAK=2.0 but 4OAK=1.5: a lower tier pays more than a higher one.
	table := healthyTable()
	table.Symbols[0] = standardSymbol("Ace", map[int]float64{3: 2.0, 4: 1.5, 5: 5.0})

	report := CheckSanity(table, healthyReels())
	if report.Verdict == VerdictPass {
		t.Fatal("non-monotonic paytable must not PASS")
	}
	count := 0
	for _, issue := range report.Issues {
		if issue.Type == "NON_MONOTONIC" && strings.Contains(issue.Detail, "Ace") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("want exactly one NON_MONOTONIC issue for Ace, got %d (%v)", count, report.Issues)
	}
	if report.Verdict != VerdictNeedsFixes {
		t.Fatalf("verdict=%s want NEEDS_FIXES", report.Verdict)
	}
}

func TestCheckSanityZeroEntriesAreNotTiers(t *testing.T) {
	// Zero at 4OAK means "tier not applicable", not a decrease.
	table := healthyTable()
	table.Symbols[0] = standardSymbol("Ace", map[int]float64{3: 1.0, 4: 0, 5: 10.0})

	report := CheckSanity(table, healthyReels())
	for _, issue := range report.Issues {
		if issue.Type == "NON_MONOTONIC" {
			t.Fatalf("zero tier flagged as non-monotonic: %v", issue)
		}
	}
}

func TestCheckSanityReelSymbolMissingFromPaytableIsBlocker(t *testing.T) {
	reels := healthyReels()
	reels[1].Symbols[3] = "Dragon"

	report := CheckSanity(healthyTable(), reels)
	if report.Verdict != VerdictFail {
		t.Fatalf("verdict=%s want FAIL", report.Verdict)
	}
	found := false
	for _, issue := range report.Issues {
		if issue.Type == "REEL_SYMBOL_MISSING_FROM_PAYTABLE" {
			found = true
			if !strings.Contains(issue.Detail, "Dragon") {
				t.Fatalf("mismatched symbol not named: %v", issue)
			}
		}
	}
	if !found {
		t.Fatal("missing REEL_SYMBOL_MISSING_FROM_PAYTABLE issue")
	}
}

func TestCheckSanityCrossReferenceIsCaseInsensitive(t *testing.T) {
	reels := healthyReels()
	for i := range reels[0].Symbols {
		reels[0].Symbols[i] = strings.ToUpper(reels[0].Symbols[i])
	}
	report := CheckSanity(healthyTable(), reels)
	for _, issue := range report.Issues {
		if issue.Type == "REEL_SYMBOL_MISSING_FROM_PAYTABLE" {
			t.Fatalf("case difference treated as mismatch: %v", issue)
		}
	}
}

func TestCheckSanityShortReelIsBlocker(t *testing.T) {
	reels := healthyReels()
	reels[2].Symbols = reels[2].Symbols[:8]

	report := CheckSanity(healthyTable(), reels)
	if report.Verdict != VerdictFail {
		t.Fatalf("verdict=%s want FAIL", report.Verdict)
	}
}

func TestCheckSanityMissingInputs(t *testing.T) {
	if report := CheckSanity(nil, nil); report.Verdict != VerdictFail {
		t.Fatalf("nil paytable verdict=%s want FAIL", report.Verdict)
	}
	if report := CheckSanity(healthyTable(), nil); report.Verdict != VerdictFail {
		t.Fatalf("nil reels verdict=%s want FAIL", report.Verdict)
	}
}

func TestCheckSanityMissingWildIsWarningOnly(t *testing.T) {
	table := &Paytable{
		Tiers: []int{3, 4, 5},
		Symbols: []Symbol{
			standardSymbol("Ace", map[int]float64{3: 1.0, 4: 2.5, 5: 10.0}),
		},
	}
	strip := make([]string, 24)
	for i := range strip {
		strip[i] = "Ace"
	}
	report := CheckSanity(table, []ReelStrip{{Name: "Reel1", Symbols: strip}})
	if len(report.Issues) != 0 {
		t.Fatalf("wild/scatter absence must not be an issue: %v", report.Issues)
	}
	warned := map[string]bool{}
	for _, warning := range report.Warnings {
		warned[warning.Type] = true
	}
	if !warned["NO_WILD"] || !warned["NO_SCATTER"] {
		t.Fatalf("want NO_WILD and NO_SCATTER warnings, got %v", report.Warnings)
	}
}

// Verdicts may only degrade as issues are added to an otherwise identical
// artifact set.
func TestVerdictOnlyDegradesWithAddedIssues(t *testing.T) {
	clean := CheckSanity(healthyTable(), healthyReels())

	withIssue := healthyTable()
	withIssue.Symbols[0] = standardSymbol("Ace", map[int]float64{3: 2.0, 4: 1.5, 5: 5.0})
	degraded := CheckSanity(withIssue, healthyReels())

	if degraded.Verdict.Rank() > clean.Verdict.Rank() {
		t.Fatalf("verdict improved after adding an issue: %s > %s", degraded.Verdict, clean.Verdict)
	}
	if degraded.Verdict == VerdictPass {
		t.Fatal("report with an issue must not PASS")
	}
}

func TestCheckSanityIsDeterministic(t *testing.T) {
	reels := healthyReels()
	reels[1].Symbols[3] = "Dragon"
	reels[1].Symbols[7] = "Phoenix"

	first := CheckSanity(healthyTable(), reels)
	second := CheckSanity(healthyTable(), reels)
	if first.Summary != second.Summary || len(first.Issues) != len(second.Issues) {
		t.Fatalf("repeated runs differ: %q vs %q", first.Summary, second.Summary)
	}
	for i := range first.Issues {
		if first.Issues[i] != second.Issues[i] {
			t.Fatalf("issue %d differs between runs", i)
		}
	}
}
