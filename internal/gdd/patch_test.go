package gdd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPatchSectionReplacesOnlyTargetBody(t *testing.T) {
	patched, result, err := PatchSection(sampleDoc, "## 9. Free Spins", "Triggered by 4 scatters. 12 spins with 3x multiplier, retrigger allowed.")
	if err != nil {
		t.Fatalf("PatchSection: %v", err)
	}
	if result.Section != "## 9. Free Spins" {
		t.Fatalf("section=%q", result.Section)
	}
	if !strings.Contains(patched, "12 spins with 3x multiplier") {
		t.Fatal("new body missing")
	}
	if strings.Contains(patched, "10 spins with 2x multiplier") {
		t.Fatal("old body still present")
	}

	// Patch locality: every other section is byte-identical.
	before := ParseSections(sampleDoc)
	after := ParseSections(patched)
	if len(before) != len(after) {
		t.Fatalf("section count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].HeaderLine != after[i].HeaderLine {
			t.Fatalf("header %d changed: %q -> %q", i, before[i].HeaderLine, after[i].HeaderLine)
		}
		if before[i].Title == "free spins" {
			continue
		}
		if before[i].Body != after[i].Body {
			t.Fatalf("untouched section %q body changed", before[i].HeaderLine)
		}
	}
}

func TestPatchSectionNotFoundListsHeaders(t *testing.T) {
	patched, _, err := PatchSection(sampleDoc, "## 99. Nonexistent", "body")
	if err == nil {
		t.Fatal("expected SectionNotFoundError")
	}
	var notFound *SectionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error type=%T", err)
	}
	if len(notFound.Available) != 5 {
		t.Fatalf("available=%v want all 5 headers", notFound.Available)
	}
	if notFound.Available[0] != "## 1. Game Overview" {
		t.Fatalf("available[0]=%q", notFound.Available[0])
	}
	if patched != sampleDoc {
		t.Fatal("document modified on failed patch")
	}
}

func TestApplierWritesDocumentAndRevisionLog(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "gdd.md")
	if err := os.WriteFile(docPath, []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	applier := NewApplier(docPath, WithClock(func() time.Time { return fixed }))

	result, err := applier.Apply("Free Spins", "Triggered by 4 scatters. 12 spins, 3x multiplier, retrigger allowed.", "RTP deviation fix")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Delta == 0 {
		t.Fatal("delta not recorded")
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	if !strings.Contains(string(data), "12 spins") {
		t.Fatal("patched document not written")
	}

	logData, err := os.ReadFile(filepath.Join(dir, "gdd_revision_log.md"))
	if err != nil {
		t.Fatalf("read revision log: %v", err)
	}
	logText := string(logData)
	if !strings.Contains(logText, "RTP deviation fix") {
		t.Fatal("revision reason missing from log")
	}
	if !strings.Contains(logText, "2025-03-01T12:00:00Z") {
		t.Fatal("timestamp missing from log")
	}
	if !strings.Contains(logText, "## 9. Free Spins") {
		t.Fatal("section header missing from log")
	}
}

func TestApplierMissingDocument(t *testing.T) {
	applier := NewApplier(filepath.Join(t.TempDir(), "missing.md"))
	if _, err := applier.Apply("Free Spins", "body", "reason"); err == nil {
		t.Fatal("expected error for missing document")
	}
}
