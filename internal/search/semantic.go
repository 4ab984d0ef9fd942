package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/clipsearch/clipsearch/internal/relevance"
	"github.com/clipsearch/clipsearch/provider"
)

// Minimum cosine similarity for a segment to count as a semantic match.
const similarityFloor = 0.25

// SemanticRetriever embeds the query and scans the per-segment vectors for
// cosine-similar spans, grouped by video.
type SemanticRetriever struct {
	Index    *Index
	Embedder provider.Embedder
}

func (r *SemanticRetriever) Search(ctx context.Context, q, channelID string, limit int) ([]relevance.VideoResultGroup, error) {
	if limit <= 0 {
		limit = 50
	}
	if r.Embedder == nil {
		return nil, fmt.Errorf("semantic search unavailable: no embedding provider")
	}
	qvecs, err := r.Embedder.CreateEmbedding(ctx, []string{q})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qvecs) == 0 {
		return nil, fmt.Errorf("embed query: empty response")
	}
	qvec := qvecs[0]

	r.Index.mu.RLock()
	defer r.Index.mu.RUnlock()

	byVideo := make(map[string][]scoredMatch)
	for videoID, entry := range r.Index.videos {
		if entry.vectors == nil {
			continue
		}
		if channelID != "" && entry.channel.ID != channelID {
			continue
		}
		for pos, vec := range entry.vectors {
			if vec == nil {
				continue
			}
			sim := cosine(qvec, vec)
			if sim < similarityFloor {
				continue
			}
			byVideo[videoID] = append(byVideo[videoID], scoredMatch{
				ref:   segmentRef{videoID: videoID, pos: pos},
				score: sim,
			})
		}
	}

	// Keep only the strongest few segment matches per video.
	for id, matches := range byVideo {
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
		if len(matches) > 5 {
			matches = matches[:5]
		}
		byVideo[id] = matches
	}

	groups := orderGroups(byVideo, r.Index.videos)
	out := make([]relevance.VideoResultGroup, 0, len(groups))
	for _, g := range groups {
		if len(out) >= limit {
			break
		}
		avg := avgScore(g.matches)
		out = append(out, buildGroup(g, &avg))
	}
	return out, nil
}

func avgScore(matches []scoredMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.score
	}
	return sum / float64(len(matches))
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
