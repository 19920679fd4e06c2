package convergence

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/artifact"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/gdd"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/jurisdiction"
)

// completeDoc generates a design document satisfying every canonical
// section: present, long enough, all required terms, concrete numbers.
func completeDoc() string {
	var b strings.Builder
	b.WriteString("# Dragon Fortune — Game Design Document\n\n")
	for _, spec := range gdd.CanonicalSections {
		fmt.Fprintf(&b, "## %d. %s\n", spec.Num, spec.Header)
		fmt.Fprintf(&b, "This section covers %s in concrete terms: 96.0%% rtp target, 5000x ceiling, 10 spins baseline. ",
			strings.Join(spec.RequiredTerms, ", "))
		for i := 0; i < 12; i++ {
			b.WriteString("Every value here is fixed and agreed with the production math model for this title. ")
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

const healthyPaytableCSV = `Symbol,3OAK,4OAK,5OAK
Wild,0,0,0
Scatter,2,10,50
Dragon,5,25,100
Phoenix,4,20,80
Tiger,3,15,60
Koi,2,10,40
Ace,1,5,20
King,1,4,15
Queen,0.5,2,10
Jack,0.5,2,8
`

func healthyReelsCSV() string {
	symbols := []string{"Wild", "Scatter", "Dragon", "Phoenix", "Tiger", "Koi", "Ace", "King", "Queen", "Jack"}
	var b strings.Builder
	b.WriteString("Reel1,Reel2,Reel3\n")
	for i := 0; i < 25; i++ {
		name := symbols[i%len(symbols)]
		fmt.Fprintf(&b, "%s,%s,%s\n", name, name, name)
	}
	return b.String()
}

func healthySimulation() artifact.SimulationRecord {
	return artifact.SimulationRecord{
		RTP:              96.0,
		HitFrequency:     24.5,
		VolatilityIndex:  8.2,
		MaxWinMultiplier: 5000,
		TotalSpins:       10_000_000,
		RTPBreakdown: map[string]float64{
			"base_game":  60.0,
			"free_spins": 30.0,
			"multiplier": 5.5,
			"jackpots":   0.5,
		},
	}
}

func testTargets() Targets {
	return Targets{
		RTP:      96.0,
		MaxWin:   5000,
		Markets:  []string{"Malta"},
		Features: []string{"free_spins", "multiplier"},
		Theme:    "dragons",
	}
}

func newTestValidator(t *testing.T, mutate func(store *artifact.Store, targets *Targets)) *Validator {
	t.Helper()
	job, err := artifact.NewJob(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := artifact.NewStore(job)
	if err := store.Write(artifact.DesignDoc, []byte(completeDoc())); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(artifact.PaytableCSV, []byte(healthyPaytableCSV)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(artifact.ReelStripsCSV, []byte(healthyReelsCSV())); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteSimulation(healthySimulation()); err != nil {
		t.Fatal(err)
	}
	targets := testTargets()
	if mutate != nil {
		mutate(store, &targets)
	}
	return NewValidator(store, jurisdiction.NewStore(), targets)
}

func mustValidate(t *testing.T, v *Validator) Report {
	t.Helper()
	report, err := v.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return report
}

func findConflict(report Report, conflictType string) (Conflict, bool) {
	for _, conflict := range report.Conflicts {
		if conflict.Type == conflictType {
			return conflict, true
		}
	}
	return Conflict{}, false
}

func TestValidateConsistentArtifactsConverge(t *testing.T) {
	report := mustValidate(t, newTestValidator(t, nil))
	if !report.Converged || report.Verdict != VerdictConverged {
		t.Fatalf("verdict=%s conflicts=%+v warnings=%v", report.Verdict, report.Conflicts, report.Warnings)
	}
	if len(report.Passed) == 0 {
		t.Fatal("no checks recorded as passed")
	}
}

func TestValidateBreakdownMismatchIsHigh(t *testing.T) {
	validator := newTestValidator(t, func(store *artifact.Store, _ *Targets) {
		sim := healthySimulation()
		sim.RTPBreakdown = map[string]float64{"base_game": 60.0, "free_spins": 20.0, "jackpots": 0.5}
		if err := store.WriteSimulation(sim); err != nil {
			t.Fatal(err)
		}
	})
	report := mustValidate(t, validator)
	conflict, ok := findConflict(report, "RTP_BREAKDOWN_MISMATCH")
	if !ok {
		t.Fatalf("conflicts=%+v", report.Conflicts)
	}
	if conflict.Severity != SeverityHigh || conflict.Owner != OwnerMathematician {
		t.Fatalf("conflict=%+v", conflict)
	}
	if !strings.Contains(conflict.Detail, "80.5") {
		t.Fatalf("detail=%q want component sum", conflict.Detail)
	}
	if report.Converged {
		t.Fatal("HIGH conflict must block convergence")
	}
}

func TestValidateRTPDeviationTiers(t *testing.T) {
	tests := []struct {
		name        string
		measured    float64
		wantBlocker bool
		wantWarning bool
	}{
		{name: "on-target", measured: 96.0},
		{name: "drifting", measured: 96.7, wantWarning: true},
		{name: "blocker", measured: 97.2, wantBlocker: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			validator := newTestValidator(t, func(store *artifact.Store, _ *Targets) {
				sim := healthySimulation()
				sim.RTP = test.measured
				delta := test.measured - 96.0
				sim.RTPBreakdown["base_game"] += delta // keep the breakdown reconciled
				if err := store.WriteSimulation(sim); err != nil {
					t.Fatal(err)
				}
			})
			report := mustValidate(t, validator)
			_, blocked := findConflict(report, "RTP_DEVIATION")
			if blocked != test.wantBlocker {
				t.Fatalf("blocker=%v want=%v (conflicts=%+v)", blocked, test.wantBlocker, report.Conflicts)
			}
			warned := false
			for _, warning := range report.Warnings {
				if strings.Contains(warning, "drifting") {
					warned = true
				}
			}
			if warned != test.wantWarning {
				t.Fatalf("warned=%v want=%v (warnings=%v)", warned, test.wantWarning, report.Warnings)
			}
		})
	}
}

func TestValidateMaxWinOverCapIsBlocker(t *testing.T) {
	validator := newTestValidator(t, func(store *artifact.Store, targets *Targets) {
		targets.Markets = []string{"UK"} // 10000x hard cap
		targets.MaxWin = 12000
		sim := healthySimulation()
		sim.MaxWinMultiplier = 12000
		if err := store.WriteSimulation(sim); err != nil {
			t.Fatal(err)
		}
	})
	report := mustValidate(t, validator)
	conflict, ok := findConflict(report, "MAX_WIN_OVER_CAP")
	if !ok {
		t.Fatalf("conflicts=%+v", report.Conflicts)
	}
	if conflict.Severity != SeverityBlocker || conflict.Owner != OwnerMathematician {
		t.Fatalf("conflict=%+v", conflict)
	}
}

func TestValidateMaxWinOverTargetIsHigh(t *testing.T) {
	validator := newTestValidator(t, func(store *artifact.Store, _ *Targets) {
		sim := healthySimulation()
		sim.MaxWinMultiplier = 6500 // target 5000, +30%
		if err := store.WriteSimulation(sim); err != nil {
			t.Fatal(err)
		}
	})
	report := mustValidate(t, validator)
	conflict, ok := findConflict(report, "MAX_WIN_OVER_TARGET")
	if !ok || conflict.Severity != SeverityHigh {
		t.Fatalf("conflicts=%+v", report.Conflicts)
	}
}

func TestValidateMissingDesignDocShortCircuits(t *testing.T) {
	job, err := artifact.NewJob(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := artifact.NewStore(job)
	if err := store.WriteSimulation(healthySimulation()); err != nil {
		t.Fatal(err)
	}
	report := mustValidate(t, NewValidator(store, jurisdiction.NewStore(), testTargets()))

	missing := 0
	for _, conflict := range report.Conflicts {
		if conflict.Type == "MISSING_ARTIFACT" {
			missing++
			if conflict.Severity != SeverityBlocker {
				t.Fatalf("conflict=%+v", conflict)
			}
		}
	}
	if missing != 3 { // design doc, paytable, reel strips
		t.Fatalf("missing=%d conflicts=%+v", missing, report.Conflicts)
	}
	if report.Audit != nil {
		t.Fatal("audit ran without a design document")
	}
	if report.Converged {
		t.Fatal("missing artifacts must block convergence")
	}
}

func TestValidateMissingSectionAttributedToDesigner(t *testing.T) {
	validator := newTestValidator(t, func(store *artifact.Store, _ *Targets) {
		doc := completeDoc()
		start := strings.Index(doc, "## 9. Free Spins")
		end := strings.Index(doc, "## 10.")
		if err := store.Write(artifact.DesignDoc, []byte(doc[:start]+doc[end:])); err != nil {
			t.Fatal(err)
		}
	})
	report := mustValidate(t, validator)
	conflict, ok := findConflict(report, "MISSING_SECTION")
	if !ok {
		t.Fatalf("conflicts=%+v", report.Conflicts)
	}
	if conflict.Owner != OwnerDesigner || conflict.Section != "## 9. Free Spins" {
		t.Fatalf("conflict=%+v", conflict)
	}
	if !strings.Contains(conflict.Fix, "retrigger") {
		t.Fatalf("fix=%q want required terms listed", conflict.Fix)
	}
}

func TestValidateBannedFeatureFoldsAsDesignerBlocker(t *testing.T) {
	validator := newTestValidator(t, func(_ *artifact.Store, targets *Targets) {
		targets.Markets = []string{"UK", "Sweden"}
		targets.Features = append(targets.Features, "bonus_buy")
	})
	report := mustValidate(t, validator)

	banned := 0
	for _, conflict := range report.Conflicts {
		if conflict.Type == "COMPLIANCE_BANNED_FEATURE" {
			banned++
			if conflict.Owner != OwnerDesigner || conflict.Section != "## 8. Feature Design" {
				t.Fatalf("conflict=%+v", conflict)
			}
		}
	}
	if banned != 2 {
		t.Fatalf("banned=%d conflicts=%+v", banned, report.Conflicts)
	}
}

func TestValidateUncostedFeatureIsWarning(t *testing.T) {
	validator := newTestValidator(t, func(store *artifact.Store, _ *Targets) {
		doc := completeDoc() + "## 16. Extra Mechanics\nThe cascading reels mechanic removes winning symbols after 1 win and drops replacements.\n"
		if err := store.Write(artifact.DesignDoc, []byte(doc)); err != nil {
			t.Fatal(err)
		}
	})
	report := mustValidate(t, validator)
	found := false
	for _, warning := range report.Warnings {
		if strings.Contains(warning, "cascading") && strings.Contains(warning, "uncosted") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings=%v", report.Warnings)
	}
	if _, blocked := findConflict(report, "UNCOSTED_FEATURE"); blocked {
		t.Fatal("uncosted feature must stay a warning")
	}
}

func TestValidateIdempotent(t *testing.T) {
	validator := newTestValidator(t, func(_ *artifact.Store, targets *Targets) {
		targets.Markets = []string{"UK", "Sweden"}
		targets.Features = append(targets.Features, "bonus_buy")
	})
	first := mustValidate(t, validator)
	second := mustValidate(t, validator)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("validator is not idempotent over unchanged artifacts")
	}
}
