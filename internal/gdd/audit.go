package gdd

import (
	"fmt"
	"regexp"
	"strings"
)

// vaguePatterns flag placeholder or filler content that should have been
// replaced with real values before review.
var vaguePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bTBD\b`),
	regexp.MustCompile(`(?i)\bTBA\b`),
	regexp.MustCompile(`(?i)\bTO BE DETERMINED\b`),
	regexp.MustCompile(`(?i)\bINSERT\b`),
	regexp.MustCompile(`(?i)\bPLACEHOLDER\b`),
	regexp.MustCompile(`(?i)\bFILL IN\b`),
	regexp.MustCompile(`\bX{2,}\b`),
	regexp.MustCompile(`(?i)\[TODO\]`),
	regexp.MustCompile(`(?i)\[TBD\]`),
	regexp.MustCompile(`(?i)\bstandard\s+royals?\b`),
	regexp.MustCompile(`(?i)\btypical\s+slot\b`),
}

// unitNumberRE matches a number followed by a unit: the signature of
// concrete, implementable values (96.5%, 5000x, 25 spins, 2500ms).
var unitNumberRE = regexp.MustCompile(`(?i)\b\d+[.\d]*\s*(%|x|credits?|coins?|spins?|seconds?|ms|px|hz)\b`)

// AuditIssue is one per-section quality finding.
type AuditIssue struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// SectionAudit scores one canonical section 0-100.
type SectionAudit struct {
	Num             int          `json:"section_num"`
	Header          string       `json:"header"`
	Score           int          `json:"score"`
	WordCount       int          `json:"word_count"`
	Issues          []AuditIssue `json:"issues,omitempty"`
	FixInstructions []string     `json:"fix_instructions,omitempty"`
}

// AuditReport is the document-level quality verdict.
type AuditReport struct {
	Verdict          string         `json:"verdict"`
	Grade            string         `json:"grade"`
	AverageScore     float64        `json:"average_score"`
	SectionsFound    int            `json:"sections_found"`
	SectionsExpected int            `json:"sections_expected"`
	TotalIssues      int            `json:"total_issues"`
	TotalWords       int            `json:"total_words"`
	Sections         []SectionAudit `json:"sections"`
	Summary          string         `json:"summary"`
}

// AuditQuality scores every canonical section of the document for presence,
// word count, required topical terms, and specificity. Each axis is worth
// 25 points; missing sections score zero and carry a fix instruction naming
// the terms the section must cover.
func AuditQuality(doc string) AuditReport {
	parsed := ParseSections(doc)
	report := AuditReport{SectionsExpected: len(CanonicalSections), TotalWords: WordCount(doc)}
	totalScore := 0

	for _, spec := range CanonicalSections {
		audit := auditSection(spec, parsed)
		totalScore += audit.Score
		report.TotalIssues += len(audit.Issues)
		report.Sections = append(report.Sections, audit)
		if audit.Score > 0 {
			report.SectionsFound++
		}
	}

	if len(CanonicalSections) > 0 {
		report.AverageScore = float64(totalScore) / float64(len(CanonicalSections))
	}
	report.Grade, report.Verdict = gradeFor(report.AverageScore)
	report.Summary = fmt.Sprintf("%s (%.0f/100) — %d/%d sections present, %d issues found",
		report.Grade, report.AverageScore, report.SectionsFound, report.SectionsExpected, report.TotalIssues)
	return report
}

func auditSection(spec SectionSpec, parsed []Section) SectionAudit {
	audit := SectionAudit{Num: spec.Num, Header: spec.Header}

	section, found := matchSpec(spec, parsed)
	if !found {
		audit.Issues = append(audit.Issues, AuditIssue{
			Type:   "MISSING",
			Detail: fmt.Sprintf("Section %q not found in document", spec.Header),
		})
		audit.FixInstructions = append(audit.FixInstructions,
			fmt.Sprintf("Add ## %d. %s section covering: %s", spec.Num, spec.Header, strings.Join(spec.RequiredTerms, ", ")))
		return audit
	}

	score := 25 // presence
	audit.WordCount = WordCount(section.Body)

	// Word count axis.
	switch {
	case audit.WordCount >= spec.MinWords:
		score += 25
	case audit.WordCount*2 >= spec.MinWords:
		score += 15
		audit.Issues = append(audit.Issues, AuditIssue{
			Type:   "THIN",
			Detail: fmt.Sprintf("%d words (minimum: %d)", audit.WordCount, spec.MinWords),
		})
		audit.FixInstructions = append(audit.FixInstructions,
			fmt.Sprintf("Expand section to at least %d words", spec.MinWords))
	default:
		score += 5
		audit.Issues = append(audit.Issues, AuditIssue{
			Type:   "STUB",
			Detail: fmt.Sprintf("Only %d words — this is a stub, not a section", audit.WordCount),
		})
		audit.FixInstructions = append(audit.FixInstructions,
			fmt.Sprintf("Rewrite section completely — needs %d+ words covering: %s", spec.MinWords, strings.Join(spec.RequiredTerms, ", ")))
	}

	// Required topical terms axis.
	bodyLower := strings.ToLower(section.Body)
	var missingTerms []string
	foundTerms := 0
	for _, term := range spec.RequiredTerms {
		if strings.Contains(bodyLower, strings.ToLower(term)) {
			foundTerms++
		} else {
			missingTerms = append(missingTerms, term)
		}
	}
	if len(spec.RequiredTerms) > 0 {
		score += 25 * foundTerms / len(spec.RequiredTerms)
	} else {
		score += 25
	}
	if len(missingTerms) > 0 {
		audit.Issues = append(audit.Issues, AuditIssue{
			Type:   "MISSING_ELEMENTS",
			Detail: fmt.Sprintf("Missing: %s", strings.Join(missingTerms, ", ")),
		})
		audit.FixInstructions = append(audit.FixInstructions,
			fmt.Sprintf("Add content about: %s", strings.Join(missingTerms, ", ")))
	}

	// Specificity axis: real unit-bearing numbers good, placeholders bad.
	vagueCount := 0
	for _, pattern := range vaguePatterns {
		vagueCount += len(pattern.FindAllString(section.Body, -1))
	}
	unitNumbers := len(unitNumberRE.FindAllString(section.Body, -1))
	switch {
	case vagueCount == 0 && unitNumbers >= 2:
		score += 25
	case vagueCount == 0:
		score += 15
		audit.Issues = append(audit.Issues, AuditIssue{
			Type:   "LOW_SPECIFICITY",
			Detail: "No specific numbers found — add exact values",
		})
	default:
		if bonus := 15 - vagueCount*5; bonus > 0 {
			score += bonus
		}
		audit.Issues = append(audit.Issues, AuditIssue{
			Type:   "VAGUE",
			Detail: fmt.Sprintf("%d placeholder(s) found (TBD, TBA, etc.)", vagueCount),
		})
		audit.FixInstructions = append(audit.FixInstructions,
			"Replace all TBD/placeholder text with exact values")
	}

	if score > 100 {
		score = 100
	}
	audit.Score = score
	return audit
}

// matchSpec finds the parsed section for a canonical spec: the spec header
// as a substring of the section title, or any significant word in common.
func matchSpec(spec SectionSpec, parsed []Section) (Section, bool) {
	want := strings.ToLower(spec.Header)
	for _, section := range parsed {
		if strings.Contains(section.Title, want) {
			return section, true
		}
	}
	for _, section := range parsed {
		if wordOverlap(want, section.Title) > 0 {
			return section, true
		}
	}
	return Section{}, false
}

func gradeFor(average float64) (grade, verdict string) {
	switch {
	case average >= 85:
		return "A", "PRODUCTION_READY"
	case average >= 70:
		return "B", "GOOD_WITH_FIXES"
	case average >= 50:
		return "C", "NEEDS_REVISION"
	default:
		return "D", "MAJOR_REWRITE_NEEDED"
	}
}
