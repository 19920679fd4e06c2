package compliance

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/jurisdiction"
)

func newChecker() *Checker {
	return NewChecker(jurisdiction.NewStore())
}

func TestBannedFeatureBlocksPerMarket(t *testing.T) {
	scan := newChecker().Run(Proposal{
		Jurisdictions: []string{"UK", "Sweden"},
		RTP:           96.0,
		MaxWin:        5000,
		Features:      []string{"free_spins", "bonus_buy"},
	})

	if scan.Verdict != VerdictBlocked {
		t.Fatalf("verdict=%s want BLOCKED", scan.Verdict)
	}
	if len(scan.Blockers) != 2 {
		t.Fatalf("blockers=%v want one per market", scan.Blockers)
	}
	for _, market := range []string{"UK", "Sweden"} {
		found := false
		for _, blocker := range scan.Blockers {
			if strings.HasPrefix(blocker, market+":") && strings.Contains(blocker, "bonus_buy") {
				found = true
			}
		}
		if !found {
			t.Fatalf("no bonus_buy blocker attributed to %s in %v", market, scan.Blockers)
		}
	}
}

func TestRTPOutOfRangeBlocks(t *testing.T) {
	scan := newChecker().Run(Proposal{
		Jurisdictions: []string{"Malta"},
		RTP:           82.0, // Malta floor is 85.0
		MaxWin:        5000,
	})
	if scan.Verdict != VerdictBlocked {
		t.Fatalf("verdict=%s", scan.Verdict)
	}
	if len(scan.Blockers) != 1 || !strings.Contains(scan.Blockers[0], "82.0%") {
		t.Fatalf("blockers=%v", scan.Blockers)
	}
}

func TestMaxWinCapBlocks(t *testing.T) {
	scan := newChecker().Run(Proposal{
		Jurisdictions: []string{"UK"},
		RTP:           96.0,
		MaxWin:        15000, // UK cap is 10000x
	})
	if scan.Verdict != VerdictBlocked {
		t.Fatalf("verdict=%s", scan.Verdict)
	}
	if !strings.Contains(scan.Blockers[0], "10000x") {
		t.Fatalf("blockers=%v", scan.Blockers)
	}
}

func TestRestrictedFeatureWarnsNotBlocks(t *testing.T) {
	scan := newChecker().Run(Proposal{
		Jurisdictions: []string{"Ontario"},
		RTP:           96.0,
		MaxWin:        5000,
		Features:      []string{"bonus_buy"}, // restricted, not banned, in Ontario
	})
	if scan.Verdict != VerdictConditionalPass {
		t.Fatalf("verdict=%s want CONDITIONAL_PASS", scan.Verdict)
	}
	if len(scan.Blockers) != 0 {
		t.Fatalf("blockers=%v", scan.Blockers)
	}
	if len(scan.Warnings) != 1 || !strings.Contains(scan.Warnings[0], "Ontario:") {
		t.Fatalf("warnings=%v", scan.Warnings)
	}
}

func TestCleanProposalIsClear(t *testing.T) {
	scan := newChecker().Run(Proposal{
		Jurisdictions: []string{"Malta"},
		RTP:           96.5,
		MaxWin:        5000,
		Features:      []string{"free_spins", "multiplier"},
	})
	if scan.Verdict != VerdictClear {
		t.Fatalf("verdict=%s blockers=%v warnings=%v", scan.Verdict, scan.Blockers, scan.Warnings)
	}
	if len(scan.SubmissionChecklist) == 0 {
		t.Fatal("submission checklist empty")
	}
	if len(scan.RequiredRGFeatures) == 0 {
		t.Fatal("required RG union empty")
	}
}

func TestUnknownJurisdictionReportedNotFailed(t *testing.T) {
	scan := newChecker().Run(Proposal{
		Jurisdictions: []string{"Atlantis", "Malta"},
		RTP:           96.0,
		MaxWin:        5000,
	})
	if !reflect.DeepEqual(scan.Unknown, []string{"Atlantis"}) {
		t.Fatalf("unknown=%v", scan.Unknown)
	}
	if len(scan.Markets) != 1 || scan.Markets[0].Market != "Malta" {
		t.Fatalf("markets=%+v", scan.Markets)
	}
	// Unknown markets need manual review, so the scan cannot be CLEAR.
	if scan.Verdict != VerdictConditionalPass {
		t.Fatalf("verdict=%s", scan.Verdict)
	}
}

func TestRGAndCycleTimeUnions(t *testing.T) {
	scan := newChecker().Run(Proposal{
		Jurisdictions: []string{"UK", "Malta"},
		RTP:           96.0,
		MaxWin:        5000,
	})
	// UK requires panic_button, Malta does not; the union carries it.
	found := false
	for _, name := range scan.RequiredRGFeatures {
		if name == "panic_button" {
			found = true
		}
	}
	if !found {
		t.Fatalf("rg union=%v missing panic_button", scan.RequiredRGFeatures)
	}
	if scan.SlowestMinCycleMS != 2500 {
		t.Fatalf("slowest cycle=%d want 2500 (UK)", scan.SlowestMinCycleMS)
	}
}

func TestScanDeterministic(t *testing.T) {
	proposal := Proposal{
		Jurisdictions: []string{"UK", "Sweden", "Malta"},
		RTP:           96.0,
		MaxWin:        5000,
		Features:      []string{"bonus_buy", "free_spins"},
	}
	first := newChecker().Run(proposal)
	second := newChecker().Run(proposal)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("scan is not deterministic")
	}
}
