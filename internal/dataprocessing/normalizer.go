package dataprocessing

import (
	"regexp"
	"strings"
)

// RegionPattern is one named exclusion rule over normalized region text.
// Patterns are data-driven so individual rules can be toggled without
// touching the matching logic.
type RegionPattern struct {
	Name    string
	Matcher *regexp.Regexp
}

// PatternSpacedLetters is the name of the loose "u s" rule. It matches
// the two-letter sequence with arbitrary surrounding whitespace anywhere
// in the name and is known to over-match legitimate state names. It is
// kept enabled by default to preserve the upstream output contract.
const PatternSpacedLetters = "spaced-letters"

// aggregateRegionPatterns covers every spelling and abbreviation of a
// national-level rollup seen in the source data: full name, bare and
// punctuated abbreviations, the informal long form, and the loose
// spaced-letters variant. Matching is unanchored substring search,
// case handled by normalizing first.
var aggregateRegionPatterns = []RegionPattern{
	{Name: "united-states", Matcher: regexp.MustCompile(`united\s+states`)},
	{Name: "us-abbrev", Matcher: regexp.MustCompile(`us`)},
	{Name: "us-dotted", Matcher: regexp.MustCompile(`u\.s\.`)},
	{Name: "usa", Matcher: regexp.MustCompile(`usa`)},
	{Name: "america", Matcher: regexp.MustCompile(`america`)},
	{Name: PatternSpacedLetters, Matcher: regexp.MustCompile(`\s*u\s*s\s*`)},
}

// Normalizer normalizes free-text region names and classifies aggregate
// regions using the pattern list above.
type Normalizer struct {
	patterns []RegionPattern
}

// NewNormalizer creates a Normalizer with all patterns enabled except
// those named in disabled.
func NewNormalizer(disabled ...string) *Normalizer {
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}

	patterns := make([]RegionPattern, 0, len(aggregateRegionPatterns))
	for _, p := range aggregateRegionPatterns {
		if !skip[p.Name] {
			patterns = append(patterns, p)
		}
	}
	return &Normalizer{patterns: patterns}
}

// Normalize returns the trimmed, lowercased form of a region name.
func (n *Normalizer) Normalize(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

// MatchAggregateRegion reports whether the region denotes a
// national-level rollup, and if so which pattern matched first.
// A record is excluded from the cleaned dataset if any pattern matches.
func (n *Normalizer) MatchAggregateRegion(region string) (string, bool) {
	normalized := n.Normalize(region)
	for _, p := range n.patterns {
		if p.Matcher.MatchString(normalized) {
			return p.Name, true
		}
	}
	return "", false
}

// IsAggregateRegion is MatchAggregateRegion without the pattern name.
func (n *Normalizer) IsAggregateRegion(region string) bool {
	_, matched := n.MatchAggregateRegion(region)
	return matched
}

// PatternNames returns the names of the enabled patterns in evaluation
// order.
func (n *Normalizer) PatternNames() []string {
	names := make([]string, len(n.patterns))
	for i, p := range n.patterns {
		names[i] = p.Name
	}
	return names
}
