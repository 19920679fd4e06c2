// Package artifact defines the filesystem-level contracts for one job's
// output directory. Each artifact has a stable identifier, kind, and a
// resolver that maps to the actual path within the job tree. The convergence
// loop reads and writes artifacts only through the Store so every write is
// all-or-nothing.
package artifact

import (
	"fmt"
	"path/filepath"
)

// Kind captures the storage shape and serialization format for an artifact.
type Kind string

const (
	// KindDocument represents a markdown text document.
	KindDocument Kind = "document"
	// KindJSON represents a JSON-encoded structured record.
	KindJSON Kind = "json"
	// KindCSV represents a CSV-shaped numeric table.
	KindCSV Kind = "csv"
)

// PathResolver returns the fully-qualified path to an artifact within a job.
type PathResolver func(*Job) string

// Ref declares a stable identifier and metadata for an artifact.
type Ref struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Optional    bool
	path        PathResolver
}

// Path resolves the artifact path for the provided job.
func (r Ref) Path(job *Job) string {
	if job == nil || r.path == nil {
		return ""
	}
	return filepath.Clean(r.path(job))
}

// Validate ensures the reference is well-formed.
func (r Ref) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("artifact: id is required")
	}
	if r.Kind == "" {
		return fmt.Errorf("artifact: kind is required for %s", r.ID)
	}
	if r.path == nil {
		return fmt.Errorf("artifact: path resolver missing for %s", r.ID)
	}
	return nil
}

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.Check results.
type CheckResult struct {
	Ref   Ref
	Path  string
	State State
	Size  int64
	Err   error
}

func register(ref Ref) Ref {
	if refs == nil {
		refs = map[string]Ref{}
	}
	refs[ref.ID] = ref
	return ref
}

var refs map[string]Ref

// Lookup returns a registered artifact reference by ID.
func Lookup(id string) (Ref, bool) {
	ref, ok := refs[id]
	return ref, ok
}

func newRef(id, name, desc string, kind Kind, resolver PathResolver) Ref {
	return Ref{ID: id, Name: name, Description: desc, Kind: kind, path: resolver}
}

// Canonical artifact references for one job's output tree. The directory
// numbering mirrors the production deliverable layout: design artifacts
// under 02_design, the math model under 03_math, legal under 05_legal.
var (
	DesignDoc = register(newRef("design-doc", "Game Design Document",
		"Long-form structured design document, patched one section at a time",
		KindDocument, func(job *Job) string { return filepath.Join(job.Dir(), "02_design", "gdd.md") }))
	RevisionLog = register(Ref{
		ID: "revision-log", Name: "Design Revision Log",
		Description: "Append-only audit log of section patches",
		Kind:        KindDocument, Optional: true,
		path: func(job *Job) string { return filepath.Join(job.Dir(), "02_design", "gdd_revision_log.md") },
	})
	ConvergenceHistory = register(newRef("convergence-history", "Convergence History",
		"Per-iteration convergence verdict snapshots",
		KindJSON, func(job *Job) string { return filepath.Join(job.Dir(), "02_design", "convergence_history.json") }))
	SimulationResults = register(newRef("simulation-results", "Simulation Results",
		"Numeric RTP/volatility snapshot, fully replaced on each re-run",
		KindJSON, func(job *Job) string { return filepath.Join(job.Dir(), "03_math", "simulation_results.json") }))
	PaytableCSV = register(newRef("paytable-csv", "Paytable",
		"Symbol pay multipliers per kind-count tier",
		KindCSV, func(job *Job) string { return filepath.Join(job.Dir(), "03_math", "paytable.csv") }))
	ReelStripsCSV = register(newRef("reel-strips-csv", "Base Reel Strips",
		"Symbol-position sequences per reel",
		KindCSV, func(job *Job) string { return filepath.Join(job.Dir(), "03_math", "BaseReels.csv") }))
	ComplianceScan = register(newRef("compliance-scan", "Compliance Scan",
		"Per-market regulatory checklist, regenerated wholesale on each scan",
		KindJSON, func(job *Job) string { return filepath.Join(job.Dir(), "05_legal", "compliance_scan.json") }))
)

// Required returns the refs the convergence loop cannot run without.
func Required() []Ref {
	return []Ref{DesignDoc, SimulationResults, PaytableCSV, ReelStripsCSV}
}
