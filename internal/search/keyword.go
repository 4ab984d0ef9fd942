package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve"

	"github.com/clipsearch/clipsearch/internal/relevance"
)

// Retriever is one retrieval backend: keyword or semantic. Both return
// per-video match groups ordered best-first with backend-specific scores.
type Retriever interface {
	Search(ctx context.Context, q, channelID string, limit int) ([]relevance.VideoResultGroup, error)
}

// KeywordRetriever runs full-text queries against the bleve side of the
// index and groups hits by video.
type KeywordRetriever struct {
	Index *Index
}

func (r *KeywordRetriever) Search(ctx context.Context, q, channelID string, limit int) ([]relevance.VideoResultGroup, error) {
	if limit <= 0 {
		limit = 50
	}
	query := bleve.NewQueryStringQuery(q)
	// Over-fetch: several segment hits can collapse into one video group.
	req := bleve.NewSearchRequestOptions(query, limit*5, 0, false)
	res, err := r.Index.bleve.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	r.Index.mu.RLock()
	defer r.Index.mu.RUnlock()

	byVideo := make(map[string][]scoredMatch)
	for _, hit := range res.Hits {
		ref, ok := r.Index.segs[hit.ID]
		if !ok {
			continue
		}
		entry := r.Index.videos[ref.videoID]
		if entry == nil {
			continue
		}
		if channelID != "" && entry.channel.ID != channelID {
			continue
		}
		byVideo[ref.videoID] = append(byVideo[ref.videoID], scoredMatch{ref: ref, score: hit.Score})
	}

	groups := orderGroups(byVideo, r.Index.videos)
	out := make([]relevance.VideoResultGroup, 0, len(groups))
	for _, g := range groups {
		if len(out) >= limit {
			break
		}
		out = append(out, buildGroup(g, nil))
	}
	return out, nil
}

// buildGroup materializes one video's result group from scored segment
// matches. avgSimilarity is non-nil on the semantic path only.
func buildGroup(g groupedVideo, avgSimilarity *float64) relevance.VideoResultGroup {
	v := g.entry.video
	ch := g.entry.channel
	matches := make([]relevance.SearchMatch, 0, len(g.matches))
	for _, m := range g.matches {
		seg := g.entry.segments[m.ref.pos]
		matches = append(matches, relevance.SearchMatch{
			TranscriptID:    seg.ID,
			VideoID:         v.ID,
			Text:            seg.Text,
			SearchContext:   stitchContext(g.entry.segments, m.ref.pos),
			StartTime:       anchorStart(g.entry.segments, m.ref.pos),
			ActualStartTime: seg.StartTime,
			Duration:        seg.Duration,
			Score:           m.score,
		})
	}
	return relevance.VideoResultGroup{
		VideoID:        v.ID,
		YouTubeVideoID: v.YouTubeID,
		Title:          v.Title,
		Thumbnail:      v.Thumbnail,
		PublishedAt:    v.PublishedAt,
		Duration:       v.Duration,
		Channel: relevance.ChannelRef{
			ID:        ch.ID,
			Handle:    ch.Handle,
			Name:      ch.Name,
			Thumbnail: ch.Thumbnail,
		},
		Matches:       matches,
		AvgSimilarity: avgSimilarity,
	}
}
