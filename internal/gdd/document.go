// Package gdd models the game design document: an ordered sequence of
// markdown sections delimited by top-level "## " headers. It provides
// section lookup with a fuzzy fallback, the targeted section patcher, and
// the section quality auditor. The document is only ever mutated one
// section at a time; the rest of the text is preserved byte for byte.
package gdd

import (
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"
)

// SectionSpec declares one canonical design-document section: how its
// header is recognized, the minimum body size, and the topical terms a
// complete treatment must mention.
type SectionSpec struct {
	Num           int
	Header        string
	RequiredTerms []string
	MinWords      int
}

// CanonicalSections is the fixed table of the 15 sections every design
// document is expected to carry, in order.
var CanonicalSections = []SectionSpec{
	{Num: 1, Header: "Game Overview", RequiredTerms: []string{"theme", "volatility", "rtp", "grid"}, MinWords: 60},
	{Num: 2, Header: "Target Market", RequiredTerms: []string{"jurisdiction", "demographic", "operator"}, MinWords: 40},
	{Num: 3, Header: "Grid Layout", RequiredTerms: []string{"rows", "columns", "reels", "payline"}, MinWords: 30},
	{Num: 4, Header: "Payline", RequiredTerms: []string{"ways", "lines", "pattern"}, MinWords: 20},
	{Num: 5, Header: "Symbol Hierarchy", RequiredTerms: []string{"wild", "scatter", "high-pay", "low-pay", "paytable"}, MinWords: 80},
	{Num: 6, Header: "RTP", RequiredTerms: []string{"target", "base game", "feature", "breakdown"}, MinWords: 40},
	{Num: 7, Header: "Volatility", RequiredTerms: []string{"hit frequency", "max win", "standard deviation"}, MinWords: 30},
	{Num: 8, Header: "Feature Design", RequiredTerms: []string{"trigger", "mechanic", "award", "frequency"}, MinWords: 100},
	{Num: 9, Header: "Free Spins", RequiredTerms: []string{"trigger", "spins", "multiplier", "retrigger"}, MinWords: 50},
	{Num: 10, Header: "Visual Design", RequiredTerms: []string{"color", "style", "mood", "animation"}, MinWords: 40},
	{Num: 11, Header: "Sound Design", RequiredTerms: []string{"ambient", "reel", "win", "feature"}, MinWords: 30},
	{Num: 12, Header: "Win Celebration", RequiredTerms: []string{"tier", "animation", "sound", "threshold"}, MinWords: 30},
	{Num: 13, Header: "Responsible Gambling", RequiredTerms: []string{"session", "reality check", "limit"}, MinWords: 25},
	{Num: 14, Header: "Certification", RequiredTerms: []string{"jurisdiction", "lab", "standard"}, MinWords: 20},
	{Num: 15, Header: "Competitor", RequiredTerms: []string{"title", "provider", "comparison"}, MinWords: 30},
}

// Section is one parsed document section. BodyStart/BodyEnd are byte
// offsets of the body span within the source document; HeaderLine is the
// verbatim header including the "## " prefix.
type Section struct {
	HeaderLine string
	Title      string // header text without "## " and numbering
	Body       string
	BodyStart  int
	BodyEnd    int
}

var headerLineRE = regexp.MustCompile(`(?m)^## .+$`)
var headerNumberRE = regexp.MustCompile(`^\d+[.)]?\s*`)

// normalizeTitle strips the "## " prefix, numbering, trailing hashes, and
// case so header variants compare equal.
func normalizeTitle(header string) string {
	title := strings.TrimSpace(header)
	title = strings.TrimPrefix(title, "##")
	title = strings.TrimSpace(title)
	title = headerNumberRE.ReplaceAllString(title, "")
	title = strings.TrimRight(title, "# ")
	return strings.ToLower(strings.TrimSpace(title))
}

// ParseSections splits a document into its "## "-delimited sections.
// Content before the first header (the document title block) is not a
// section and is ignored.
func ParseSections(doc string) []Section {
	locs := headerLineRE.FindAllStringIndex(doc, -1)
	sections := make([]Section, 0, len(locs))
	for i, loc := range locs {
		headerLine := doc[loc[0]:loc[1]]
		bodyStart := loc[1]
		bodyEnd := len(doc)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		sections = append(sections, Section{
			HeaderLine: headerLine,
			Title:      normalizeTitle(headerLine),
			Body:       doc[bodyStart:bodyEnd],
			BodyStart:  bodyStart,
			BodyEnd:    bodyEnd,
		})
	}
	return sections
}

// Headers returns the verbatim "## " header lines present in the document,
// in order. Used to report actually-present sections when a lookup misses.
func Headers(doc string) []string {
	return headerLineRE.FindAllString(doc, -1)
}

// FindSection locates the section matching a loosely-specified header.
// Matching rules, in order: exact normalized-substring match, then fuzzy
// ranking over all headers, then significant-word overlap. The second
// return is false when nothing plausible matches.
func FindSection(doc, headerCandidate string) (Section, bool) {
	sections := ParseSections(doc)
	if len(sections) == 0 {
		return Section{}, false
	}
	want := normalizeTitle(headerCandidate)
	if want == "" {
		return Section{}, false
	}

	// Exact pass: candidate contained in header or header in candidate.
	for _, section := range sections {
		if strings.Contains(section.Title, want) || strings.Contains(want, section.Title) {
			return section, true
		}
	}

	// Fuzzy pass over normalized titles.
	titles := make([]string, len(sections))
	for i, section := range sections {
		titles[i] = section.Title
	}
	if matches := fuzzy.Find(want, titles); len(matches) > 0 {
		return sections[matches[0].Index], true
	}

	// Word-overlap pass: at least one significant word in common.
	for _, section := range sections {
		if wordOverlap(want, section.Title) > 0 {
			return section, true
		}
	}
	return Section{}, false
}

// wordOverlap counts shared words longer than three characters.
func wordOverlap(a, b string) int {
	seen := map[string]bool{}
	for _, word := range strings.Fields(a) {
		if len(word) > 3 {
			seen[word] = true
		}
	}
	count := 0
	for _, word := range strings.Fields(b) {
		if len(word) > 3 && seen[word] {
			count++
		}
	}
	return count
}

// WordCount counts whitespace-delimited words in a section body.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
