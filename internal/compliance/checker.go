// Package compliance evaluates a proposed game configuration against the
// jurisdiction profile store and produces the per-market regulatory scan:
// a PASS/FAIL/WARN/INFO checklist per market, running unions of
// responsible-gambling and submission requirements, and an aggregate
// CLEAR / CONDITIONAL_PASS / BLOCKED verdict.
package compliance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/jurisdiction"
)

// Check statuses. FAIL marks a blocker attributed to one market; WARN marks
// a condition that needs disclosure or design attention but does not block.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusWarn = "WARN"
	StatusInfo = "INFO"
)

// Scan verdicts.
const (
	VerdictClear           = "CLEAR"
	VerdictConditionalPass = "CONDITIONAL_PASS"
	VerdictBlocked         = "BLOCKED"
)

// Proposal is the numeric/feature configuration under evaluation.
type Proposal struct {
	Jurisdictions []string `json:"jurisdictions"`
	RTP           float64  `json:"rtp"`
	MaxWin        int      `json:"max_win"`
	Features      []string `json:"features,omitempty"`
	Theme         string   `json:"theme,omitempty"`
}

// Check is one named regulatory check within one market.
type Check struct {
	Name   string `json:"check"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// MarketResult is the checklist for one resolved jurisdiction.
type MarketResult struct {
	Market    string  `json:"market"`
	Authority string  `json:"authority"`
	Standard  string  `json:"standard"`
	Checks    []Check `json:"checks"`
}

// Scan is the aggregate compliance result. Regenerated wholesale on each
// run; never incrementally patched.
type Scan struct {
	Verdict             string         `json:"verdict"`
	Proposal            Proposal       `json:"proposal"`
	Markets             []MarketResult `json:"markets"`
	Unknown             []string       `json:"unknown_jurisdictions,omitempty"`
	Blockers            []string       `json:"blockers,omitempty"`
	Warnings            []string       `json:"warnings,omitempty"`
	RequiredRGFeatures  []string       `json:"required_rg_features,omitempty"`
	SubmissionChecklist []string       `json:"submission_checklist,omitempty"`
	SlowestMinCycleMS   int            `json:"slowest_min_cycle_ms,omitempty"`
	RNGCertifications   []string       `json:"rng_certifications,omitempty"`
	Summary             string         `json:"summary"`
}

// Checker runs compliance scans against a profile store.
type Checker struct {
	store *jurisdiction.Store
}

// NewChecker builds a checker over the given profile store.
func NewChecker(store *jurisdiction.Store) *Checker {
	return &Checker{store: store}
}

// Run evaluates the proposal against every named jurisdiction. Unknown
// market names are collected, not rejected: the scan proceeds on the
// profiles it can resolve. A single market's banned-feature hit,
// out-of-range RTP, or cap violation blocks the whole proposal.
func (c *Checker) Run(proposal Proposal) Scan {
	scan := Scan{Verdict: VerdictClear, Proposal: proposal}
	rgRequired := map[string]struct{}{}
	docs := map[string]struct{}{}
	certs := map[string]struct{}{}

	for _, name := range proposal.Jurisdictions {
		profile, ok := c.store.Get(name)
		if !ok {
			scan.Unknown = append(scan.Unknown, strings.TrimSpace(name))
			continue
		}
		result := c.checkMarket(profile, proposal, &scan)
		scan.Markets = append(scan.Markets, result)

		for featureName, rg := range profile.ResponsibleGambling {
			if rg.Required {
				rgRequired[featureName] = struct{}{}
			}
		}
		for _, doc := range profile.SubmissionDocuments {
			docs[doc] = struct{}{}
		}
		if profile.RNGCertification != "" {
			certs[profile.Name+": "+profile.RNGCertification] = struct{}{}
		}
		if profile.MinCycleTimeMS > scan.SlowestMinCycleMS {
			scan.SlowestMinCycleMS = profile.MinCycleTimeMS
		}
	}

	scan.RequiredRGFeatures = sortedSet(rgRequired)
	scan.SubmissionChecklist = sortedSet(docs)
	scan.RNGCertifications = sortedSet(certs)

	if len(scan.Unknown) > 0 {
		scan.Warnings = append(scan.Warnings,
			fmt.Sprintf("Unknown jurisdiction(s) need manual review: %s", strings.Join(scan.Unknown, ", ")))
	}

	switch {
	case len(scan.Blockers) > 0:
		scan.Verdict = VerdictBlocked
	case len(scan.Warnings) > 0:
		scan.Verdict = VerdictConditionalPass
	}
	scan.Summary = fmt.Sprintf("%s — %d market(s) evaluated, %d blocker(s), %d warning(s)",
		scan.Verdict, len(scan.Markets), len(scan.Blockers), len(scan.Warnings))
	return scan
}

func (c *Checker) checkMarket(profile jurisdiction.Profile, proposal Proposal, scan *Scan) MarketResult {
	result := MarketResult{Market: profile.Name, Authority: profile.Authority, Standard: profile.Standard}

	// RTP range.
	if proposal.RTP < profile.RTPMin || proposal.RTP > profile.RTPMax {
		detail := fmt.Sprintf("RTP %.1f%% outside allowed range %.1f-%.1f%%", proposal.RTP, profile.RTPMin, profile.RTPMax)
		result.Checks = append(result.Checks, Check{Name: "rtp_range", Status: StatusFail, Detail: detail})
		scan.Blockers = append(scan.Blockers, profile.Name+": "+detail)
	} else {
		result.Checks = append(result.Checks, Check{
			Name:   "rtp_range",
			Status: StatusPass,
			Detail: fmt.Sprintf("RTP %.1f%% within %.1f-%.1f%%", proposal.RTP, profile.RTPMin, profile.RTPMax),
		})
	}

	// Max-win cap.
	if profile.MaxWinCap != nil && proposal.MaxWin > *profile.MaxWinCap {
		detail := fmt.Sprintf("Max win %dx exceeds hard cap %dx", proposal.MaxWin, *profile.MaxWinCap)
		result.Checks = append(result.Checks, Check{Name: "max_win_cap", Status: StatusFail, Detail: detail})
		scan.Blockers = append(scan.Blockers, profile.Name+": "+detail)
	} else {
		detail := "No max-win cap"
		if profile.MaxWinCap != nil {
			detail = fmt.Sprintf("Max win %dx under cap %dx", proposal.MaxWin, *profile.MaxWinCap)
		}
		result.Checks = append(result.Checks, Check{Name: "max_win_cap", Status: StatusPass, Detail: detail})
	}

	// Banned features: any overlap blocks.
	if hits := featureOverlap(proposal.Features, profile.BannedFeatures); len(hits) > 0 {
		detail := fmt.Sprintf("Banned feature(s) in proposal: %s", strings.Join(hits, ", "))
		result.Checks = append(result.Checks, Check{Name: "banned_features", Status: StatusFail, Detail: detail})
		scan.Blockers = append(scan.Blockers, profile.Name+": "+detail)
	} else {
		result.Checks = append(result.Checks, Check{Name: "banned_features", Status: StatusPass, Detail: "No banned features in proposal"})
	}

	// Restricted features: overlap warns, does not block.
	if hits := featureOverlap(proposal.Features, profile.RestrictedFeatures); len(hits) > 0 {
		detail := fmt.Sprintf("Restricted feature(s) need disclosure: %s", strings.Join(hits, ", "))
		result.Checks = append(result.Checks, Check{Name: "restricted_features", Status: StatusWarn, Detail: detail})
		scan.Warnings = append(scan.Warnings, profile.Name+": "+detail)
	} else if len(profile.RestrictedFeatures) > 0 {
		result.Checks = append(result.Checks, Check{Name: "restricted_features", Status: StatusPass, Detail: "No restricted features in proposal"})
	}

	// Responsible gambling requirements are informational here; the designer
	// covers them in the document, the compliance officer verifies at submission.
	if required := requiredRGNames(profile); len(required) > 0 {
		result.Checks = append(result.Checks, Check{
			Name:   "responsible_gambling",
			Status: StatusInfo,
			Detail: fmt.Sprintf("Required: %s", strings.Join(required, ", ")),
		})
	}

	if len(profile.ContentRestrictions) > 0 && proposal.Theme != "" {
		result.Checks = append(result.Checks, Check{
			Name:   "content_restrictions",
			Status: StatusInfo,
			Detail: fmt.Sprintf("Theme %q must respect %d content restriction(s)", proposal.Theme, len(profile.ContentRestrictions)),
		})
	}

	return result
}

// featureOverlap intersects proposal features with a profile list,
// case-insensitively, preserving the proposal's spelling.
func featureOverlap(proposed, listed []string) []string {
	set := make(map[string]struct{}, len(listed))
	for _, feature := range listed {
		set[strings.ToLower(strings.TrimSpace(feature))] = struct{}{}
	}
	var hits []string
	for _, feature := range proposed {
		if _, ok := set[strings.ToLower(strings.TrimSpace(feature))]; ok {
			hits = append(hits, feature)
		}
	}
	return hits
}

func requiredRGNames(profile jurisdiction.Profile) []string {
	var names []string
	for name, rg := range profile.ResponsibleGambling {
		if rg.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
