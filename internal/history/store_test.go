package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	run, err := store.BeginRun("dragon-fortune")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run ID empty")
	}

	for i := 1; i <= 3; i++ {
		record := IterationRecord{
			Iteration: i,
			Converged: i == 3,
			Verdict:   "NOT_CONVERGED",
			Blockers:  3 - i,
			Warnings:  2,
			Summary:   "iteration snapshot",
		}
		if i == 3 {
			record.Verdict = "CONVERGED"
		}
		if err := store.RecordIteration(run.ID, record); err != nil {
			t.Fatalf("RecordIteration %d: %v", i, err)
		}
	}
	if err := store.FinishRun(run.ID, true, true, 3, "CONVERGED"); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	latest, ok, err := store.LatestRun("dragon-fortune")
	if err != nil || !ok {
		t.Fatalf("LatestRun: ok=%v err=%v", ok, err)
	}
	if !latest.Converged || !latest.Forced || latest.Iterations != 3 {
		t.Fatalf("latest=%+v", latest)
	}
	if latest.FinishedAt == nil {
		t.Fatal("finished_at not set")
	}

	records, err := store.Iterations(run.ID)
	if err != nil {
		t.Fatalf("Iterations: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d", len(records))
	}
	if records[0].Iteration != 1 || records[2].Verdict != "CONVERGED" {
		t.Fatalf("records=%+v", records)
	}
	if records[0].Blockers != 2 {
		t.Fatalf("records[0]=%+v", records[0])
	}
}

func TestRunsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	tick := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	if _, err := store.BeginRun("alpha"); err != nil {
		t.Fatal(err)
	}
	second, err := store.BeginRun("beta")
	if err != nil {
		t.Fatal(err)
	}
	runs, err := store.Runs(10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs=%d", len(runs))
	}
	if runs[0].ID != second.ID {
		t.Fatalf("runs[0]=%+v want newest first", runs[0])
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := newTestStore(t)
	if err := store.FinishRun("no-such-run", false, false, 0, "NOT_CONVERGED"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestLatestRunMissingJob(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.LatestRun("absent")
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if ok {
		t.Fatal("unexpected run")
	}
}
