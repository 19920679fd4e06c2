package gdd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SectionNotFoundError reports a patch target that matched no section. It
// carries the headers actually present so the caller can retry with a
// corrected header string instead of silently patching nothing.
type SectionNotFoundError struct {
	Header    string
	Available []string
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("gdd: section %q not found (available: %s)", e.Header, strings.Join(e.Available, "; "))
}

// PatchResult summarizes one applied section patch.
type PatchResult struct {
	Section  string `json:"section_updated"`
	OldChars int    `json:"old_section_chars"`
	NewChars int    `json:"new_section_chars"`
	Delta    int    `json:"delta_chars"`
	DocChars int    `json:"total_doc_chars"`
}

// PatchSection replaces exactly one section's body, preserving the header
// line verbatim and every other byte of the document. The header must match
// a present section exactly after normalization; fuzzy correction is the
// caller's job (see FindSection). Returns SectionNotFoundError with the
// full header inventory when the target is absent.
func PatchSection(doc, header, newBody string) (string, PatchResult, error) {
	want := normalizeTitle(header)
	for _, section := range ParseSections(doc) {
		if section.Title != want {
			continue
		}
		body := "\n" + strings.TrimSpace(newBody) + "\n\n"
		patched := doc[:section.BodyStart] + body + doc[section.BodyEnd:]
		return patched, PatchResult{
			Section:  section.HeaderLine,
			OldChars: len(section.Body),
			NewChars: len(newBody),
			Delta:    len(newBody) - len(section.Body),
			DocChars: len(patched),
		}, nil
	}
	return doc, PatchResult{}, &SectionNotFoundError{Header: header, Available: Headers(doc)}
}

// Applier performs section patches against the design document on disk and
// keeps the side revision log for audit purposes.
type Applier struct {
	path    string
	logPath string
	now     func() time.Time
}

// ApplierOption customizes an Applier.
type ApplierOption func(*Applier)

// WithClock injects a deterministic clock for tests.
func WithClock(clock func() time.Time) ApplierOption {
	return func(a *Applier) {
		if clock != nil {
			a.now = clock
		}
	}
}

// NewApplier builds an applier for the document at path. The revision log
// lives next to the document.
func NewApplier(path string, opts ...ApplierOption) *Applier {
	applier := &Applier{
		path:    path,
		logPath: filepath.Join(filepath.Dir(path), "gdd_revision_log.md"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(applier)
	}
	return applier
}

// Apply patches one section in place and appends a revision log entry. The
// document write is whole-file via temp+rename so an interrupted process
// never leaves a truncated document behind.
func (a *Applier) Apply(header, newBody, reason string) (PatchResult, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return PatchResult{}, fmt.Errorf("gdd: read document: %w", err)
	}
	patched, result, err := PatchSection(string(data), header, newBody)
	if err != nil {
		return PatchResult{}, err
	}
	if err := writeFileAtomic(a.path, []byte(patched)); err != nil {
		return PatchResult{}, fmt.Errorf("gdd: write document: %w", err)
	}
	a.appendRevisionLog(result, reason)
	return result, nil
}

// appendRevisionLog records the patch for the audit trail. Log failures are
// swallowed: the patch itself already succeeded and the log is advisory.
func (a *Applier) appendRevisionLog(result PatchResult, reason string) {
	entry := fmt.Sprintf("\n---\n### Revision: %s\n**When:** %s\n**Reason:** %s\n**Old length:** %d chars -> **New length:** %d chars\n**Delta:** %+d chars\n",
		result.Section,
		a.now().UTC().Format(time.RFC3339),
		strings.TrimSpace(reason),
		result.OldChars, result.NewChars, result.Delta,
	)
	file, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(entry)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".patch-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
