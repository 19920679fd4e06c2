// Package jurisdiction holds the static regulatory profile store: per-market
// RTP bounds, max-win caps, feature bans, responsible-gambling requirements,
// and submission document lists. Profiles are immutable within a run and are
// looked up case-insensitively. Extra markets can be merged in from YAML
// profile packs without recompiling.
package jurisdiction

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store resolves jurisdiction profiles by name.
type Store struct {
	profiles map[string]Profile // keyed by lowercase trimmed name
}

// NewStore builds a store preloaded with the built-in market profiles.
func NewStore() *Store {
	profiles := make(map[string]Profile, len(builtinProfiles))
	for key, profile := range builtinProfiles {
		profiles[key] = profile
	}
	return &Store{profiles: profiles}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get resolves a profile by name. Matching is case-insensitive with
// whitespace trimming. The second return is false for unknown markets;
// callers report those separately rather than failing the whole evaluation.
func (s *Store) Get(name string) (Profile, bool) {
	profile, ok := s.profiles[normalizeName(name)]
	return profile, ok
}

// Names returns the known market names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for _, profile := range s.profiles {
		names = append(names, profile.Name)
	}
	sort.Strings(names)
	return names
}

// Add merges a profile into the store, replacing any existing entry with the
// same normalized name.
func (s *Store) Add(profile Profile) error {
	if strings.TrimSpace(profile.Name) == "" {
		return fmt.Errorf("jurisdiction: profile name is required")
	}
	if profile.RTPMin < 0 || profile.RTPMax > 100 || profile.RTPMin > profile.RTPMax {
		return fmt.Errorf("jurisdiction: %s has invalid RTP range %.1f-%.1f", profile.Name, profile.RTPMin, profile.RTPMax)
	}
	s.profiles[normalizeName(profile.Name)] = profile
	return nil
}

// LoadPackDir merges every *.yaml profile pack found under dir into the
// store. A missing directory means "no packs" and is not an error.
func (s *Store) LoadPackDir(dir string) error {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("jurisdiction: read pack dir %s: %w", trimmed, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := s.loadPackFile(filepath.Join(trimmed, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadPackFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("jurisdiction: read pack %s: %w", path, err)
	}
	var pack struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("jurisdiction: decode pack %s: %w", path, err)
	}
	for _, profile := range pack.Profiles {
		if err := s.Add(profile); err != nil {
			return fmt.Errorf("jurisdiction: pack %s: %w", path, err)
		}
	}
	return nil
}

// Intersection is the most-restrictive combination of a set of markets.
// A multi-jurisdiction game must satisfy the tightest constraint from any
// target market simultaneously, never an average: the highest minimum RTP,
// the lowest max-win cap (no cap treated as unbounded), the union of
// feature bans and responsible-gambling requirements, and the slowest
// minimum game cycle time.
type Intersection struct {
	Known              []string
	Unknown            []string
	TightestMinRTP     float64
	MaxWinCap          *int
	BannedFeatures     []string
	RestrictedFeatures []string
	RequiredRGFeatures []string
	SlowestMinCycleMS  int
	SubmissionDocs     []string
}

// Intersect combines the named markets into their tightest joint constraint
// set. Unknown names are collected rather than rejected so a partial profile
// set can still be evaluated.
func (s *Store) Intersect(names []string) Intersection {
	result := Intersection{}
	banned := map[string]struct{}{}
	restricted := map[string]struct{}{}
	requiredRG := map[string]struct{}{}
	docs := map[string]struct{}{}

	for _, name := range names {
		profile, ok := s.Get(name)
		if !ok {
			result.Unknown = append(result.Unknown, strings.TrimSpace(name))
			continue
		}
		result.Known = append(result.Known, profile.Name)

		if profile.RTPMin > result.TightestMinRTP {
			result.TightestMinRTP = profile.RTPMin
		}
		if profile.MaxWinCap != nil {
			if result.MaxWinCap == nil || *profile.MaxWinCap < *result.MaxWinCap {
				cap := *profile.MaxWinCap
				result.MaxWinCap = &cap
			}
		}
		if profile.MinCycleTimeMS > result.SlowestMinCycleMS {
			result.SlowestMinCycleMS = profile.MinCycleTimeMS
		}
		for _, feature := range profile.BannedFeatures {
			banned[feature] = struct{}{}
		}
		for _, feature := range profile.RestrictedFeatures {
			restricted[feature] = struct{}{}
		}
		for featureName, rg := range profile.ResponsibleGambling {
			if rg.Required {
				requiredRG[featureName] = struct{}{}
			}
		}
		for _, doc := range profile.SubmissionDocuments {
			docs[doc] = struct{}{}
		}
	}

	result.BannedFeatures = sortedKeys(banned)
	result.RestrictedFeatures = sortedKeys(restricted)
	result.RequiredRGFeatures = sortedKeys(requiredRG)
	result.SubmissionDocs = sortedKeys(docs)
	return result
}

func sortedKeys(set map[string]struct{}) []string {
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
