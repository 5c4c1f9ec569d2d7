// Package resolver maps a free-text query onto a single catalog entry, or
// onto no match. Matching is a four-tier scorer evaluated per entry: exact
// equality, substring containment, bounded edit distance, and token overlap.
package resolver

import (
	"strings"

	"github.com/hkonishi/memedex/internal/catalog"
)

// Scoring tiers. The values establish a strict precedence band per tier: an
// exact match always beats any containment, containment always beats any
// edit-distance match, and token overlap can never reach the edit-distance
// band. Later tiers only ever raise an entry's score.
const (
	// ScoreExact is awarded for case-insensitive equality.
	ScoreExact = 100.0

	// Containment scores 80 plus up to 10 by length ratio, so a near-total
	// containment ("drake hotline" in "Drake Hotline Bling") lands close
	// to exact while a short fragment stays near the band floor.
	scoreContainmentBase   = 80.0
	containmentRatioWeight = 10.0

	// Edit distance scores 70 minus 5 per edit, bounded by MaxEditDistance.
	scoreEditDistanceBase = 70.0
	editDistancePenalty   = 5.0

	// MaxEditDistance bounds tier 3. Three edits covers the typo rate seen
	// in chat queries without letting unrelated short names collide.
	MaxEditDistance = 3

	// Token overlap weighs coverage of the entry's name tokens higher than
	// coverage of the query's tokens: matching what the catalog calls the
	// template matters more than consuming every word the user typed.
	nameTokenWeight  = 60.0
	queryTokenWeight = 40.0

	// minTokenRunes drops stopword-sized tokens ("of", "a") from tier 4.
	minTokenRunes = 3
)

// Match is a successful resolution.
type Match struct {
	Entry catalog.Entry
	Score float64
}

// Normalize canonicalizes a string for comparison: trimmed and lower-cased.
// Original casing is preserved for display by keeping the entry untouched.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve scores every catalog entry against the query and returns the entry
// with the strictly highest score. Ties keep the first-seen entry; a highest
// score of zero reports no match. The scoring loop is CPU-bound and
// synchronous; catalogs in the low thousands resolve in well under a
// millisecond.
func Resolve(query string, cat catalog.Catalog) (Match, bool) {
	normalizedQuery := Normalize(query)
	if normalizedQuery == "" {
		return Match{}, false
	}

	best := Match{}
	for _, entry := range cat.Entries {
		score := scoreEntry(normalizedQuery, Normalize(entry.Name))
		if score > best.Score {
			best = Match{Entry: entry, Score: score}
		}
	}
	if best.Score == 0 {
		return Match{}, false
	}
	return best, true
}

// scoreEntry computes the best score across all four tiers for one entry.
// Both inputs are already normalized.
func scoreEntry(query, name string) float64 {
	if name == "" {
		return 0
	}

	if query == name {
		return ScoreExact
	}

	score := 0.0
	if strings.Contains(name, query) || strings.Contains(query, name) {
		shorter, longer := len(query), len(name)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		score = scoreContainmentBase + containmentRatioWeight*float64(shorter)/float64(longer)
	}

	if distance := Distance(query, name); distance <= MaxEditDistance {
		if editScore := scoreEditDistanceBase - editDistancePenalty*float64(distance); editScore > score {
			score = editScore
		}
	}

	// Token overlap cannot reach the edit-distance band, so skip it once a
	// higher tier already scored there.
	if score < scoreEditDistanceBase {
		if overlapScore := tokenOverlapScore(query, name); overlapScore > score {
			score = overlapScore
		}
	}
	return score
}

// tokenOverlapScore measures how many of the entry's name tokens appear as
// substrings of some query token, and vice versa with lower weight.
func tokenOverlapScore(query, name string) float64 {
	queryTokens := significantTokens(query)
	nameTokens := significantTokens(name)
	if len(queryTokens) == 0 || len(nameTokens) == 0 {
		return 0
	}

	nameCoverage := tokenCoverage(nameTokens, queryTokens)
	queryCoverage := tokenCoverage(queryTokens, nameTokens)

	score := nameTokenWeight * nameCoverage
	if other := queryTokenWeight * queryCoverage; other > score {
		score = other
	}
	return score
}

// tokenCoverage returns the fraction of tokens that appear as a substring of
// at least one of the other side's tokens.
func tokenCoverage(tokens, others []string) float64 {
	covered := 0
	for _, token := range tokens {
		for _, other := range others {
			if strings.Contains(other, token) {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(tokens))
}

func significantTokens(s string) []string {
	var tokens []string
	for _, token := range strings.Fields(s) {
		if len([]rune(token)) >= minTokenRunes {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
