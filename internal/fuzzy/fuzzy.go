// internal/fuzzy/fuzzy.go
package fuzzy

import (
	"sort"
	"strings"

	"store-assistant/internal/models"
)

// PartialRatio scores how much of fragment is present in candidate, 0-100.
// The score is order-insensitive: each fragment character (multiset,
// case-folded) that also occurs in the candidate counts as overlap, so
// truncations, pluralization and minor misspellings still score high.
func PartialRatio(fragment, candidate string) int {
	frag := []rune(strings.ToLower(strings.TrimSpace(fragment)))
	if len(frag) == 0 {
		return 0
	}

	pool := make(map[rune]int)
	for _, r := range strings.ToLower(candidate) {
		pool[r]++
	}

	overlap := 0
	for _, r := range frag {
		if pool[r] > 0 {
			pool[r]--
			overlap++
		}
	}

	return overlap * 100 / len(frag)
}

// Match scores fragment against every candidate and returns those whose score
// strictly exceeds threshold, highest score first. Ties keep the candidates'
// original relative order. A negative limit means unlimited.
func Match(fragment string, candidates []string, threshold, limit int) []models.MatchCandidate {
	if strings.TrimSpace(fragment) == "" || len(candidates) == 0 {
		return nil
	}

	var matched []models.MatchCandidate
	for _, candidate := range candidates {
		score := PartialRatio(fragment, candidate)
		if score > threshold {
			matched = append(matched, models.MatchCandidate{
				Fragment:  fragment,
				Candidate: candidate,
				Score:     score,
			})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})

	if limit >= 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched
}

// Names extracts just the candidate strings from ranked matches.
func Names(matches []models.MatchCandidate) []string {
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Candidate
	}
	return names
}
