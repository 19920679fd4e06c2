package convergence

import (
	"strings"
	"testing"
)

func TestCheckRTPBudgetBalanced(t *testing.T) {
	report := CheckRTPBudget(96.0, map[string]float64{
		"base_game":  60.0,
		"free_spins": 33.0,
		"jackpots":   3.0,
	})
	if !report.Balanced {
		t.Fatalf("report=%+v", report)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("warnings=%v", report.Warnings)
	}
}

func TestCheckRTPBudgetGap(t *testing.T) {
	report := CheckRTPBudget(96.0, map[string]float64{"base_game": 60.0, "free_spins": 20.0})
	if report.Balanced {
		t.Fatal("gap of 16.0 reported as balanced")
	}
	if report.Gap < 15.9 || report.Gap > 16.1 {
		t.Fatalf("gap=%v", report.Gap)
	}
}

func TestCheckRTPBudgetHeuristicWarnings(t *testing.T) {
	report := CheckRTPBudget(96.0, map[string]float64{
		"base_game":  15.0, // under 20
		"free_spins": 75.0, // over 60
		"jackpot":    7.0,  // over 5
		"mystery":    -1.0, // negative
	})
	if len(report.Warnings) != 4 {
		t.Fatalf("warnings=%v", report.Warnings)
	}
	joined := strings.Join(report.Warnings, "\n")
	for _, want := range []string{"negative", "over 60%", "5% ceiling", "under 20%"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("warnings missing %q: %v", want, report.Warnings)
		}
	}
}

func TestCheckRTPBudgetDeterministicWarningOrder(t *testing.T) {
	components := map[string]float64{"zeta": -1, "alpha": 70, "base_game": 10}
	first := CheckRTPBudget(96.0, components)
	second := CheckRTPBudget(96.0, components)
	if strings.Join(first.Warnings, "|") != strings.Join(second.Warnings, "|") {
		t.Fatal("warning order is not deterministic")
	}
}
