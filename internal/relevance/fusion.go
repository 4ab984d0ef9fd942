package relevance

import "sort"

// Fixed 50/50 split between the two retrieval paths. Not query-adaptive.
const (
	keywordWeight  = 0.5
	semanticWeight = 0.5
)

// FuseResults merges the keyword and semantic result lists into one ranked
// list. Absolute backend scores are not comparable, so each list
// contributes a rank-normalized score: position i in a list of length L is
// worth (L-i)/L, decaying linearly from 1.0. Videos found by both paths
// accumulate both contributions, so consensus can reach 1.0 while
// single-path hits keep partial credit.
func FuseResults(keywordResults, semanticResults []VideoResultGroup, limit int) []VideoResultGroup {
	merged := make(map[string]*VideoResultGroup)
	order := make([]string, 0, len(keywordResults)+len(semanticResults))

	kl := len(keywordResults)
	for i := range keywordResults {
		g := keywordResults[i]
		rank := i + 1
		g.HybridScore = rankScore(i, kl) * keywordWeight
		g.KeywordRank = &rank
		merged[g.VideoID] = &g
		order = append(order, g.VideoID)
	}

	sl := len(semanticResults)
	for i := range semanticResults {
		g := semanticResults[i]
		rank := i + 1
		score := rankScore(i, sl) * semanticWeight
		if existing, ok := merged[g.VideoID]; ok {
			existing.HybridScore += score
			existing.SemanticRank = &rank
			existing.AvgSimilarity = g.AvgSimilarity
			existing.Matches = unionMatches(existing.Matches, g.Matches)
			continue
		}
		g.HybridScore = score
		g.SemanticRank = &rank
		merged[g.VideoID] = &g
		order = append(order, g.VideoID)
	}

	out := make([]VideoResultGroup, 0, len(order))
	for _, id := range order {
		out = append(out, *merged[id])
	}
	// Stable: ties keep insertion order, keyword list first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].HybridScore > out[j].HybridScore })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// rankScore normalizes a 0-indexed list position to (L-i)/L.
func rankScore(i, l int) float64 {
	if l == 0 {
		return 0
	}
	return float64(l-i) / float64(l)
}

// unionMatches merges semantic matches into the keyword-side list, keyed by
// transcript ID. When both sides matched the same segment the keyword match
// wins; semantic-only matches are appended after.
func unionMatches(keyword, semantic []SearchMatch) []SearchMatch {
	seen := make(map[string]struct{}, len(keyword))
	for _, m := range keyword {
		seen[m.TranscriptID] = struct{}{}
	}
	out := keyword
	for _, m := range semantic {
		if _, ok := seen[m.TranscriptID]; ok {
			continue
		}
		out = append(out, m)
	}
	return out
}
