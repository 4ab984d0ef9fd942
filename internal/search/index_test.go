package search

import (
	"context"
	"testing"
	"time"

	"github.com/clipsearch/clipsearch/models"
)

func boolPtr(b bool) *bool { return &b }

func testVideo(id, title string) (models.Video, models.Channel) {
	v := models.Video{
		ID:          id,
		ChannelID:   "ch1",
		YouTubeID:   "yt-" + id,
		Title:       title,
		PublishedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Duration:    600,
		IsQuality:   boolPtr(true),
	}
	ch := models.Channel{ID: "ch1", Handle: "acme", Name: "Acme Labs"}
	return v, ch
}

func seg(id, text string, start float64) models.TranscriptSegment {
	return models.TranscriptSegment{ID: id, Text: text, StartTime: start, Duration: 4}
}

func TestKeywordSearchGroupsByVideo(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	v1, ch := testVideo("v1", "Soldering basics")
	if err := idx.AddVideo(v1, ch, []models.TranscriptSegment{
		seg("s1", "welcome back to the channel", 0),
		seg("s2", "today we cover soldering irons", 4),
		seg("s3", "soldering takes practice", 8),
	}, nil); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	v2, _ := testVideo("v2", "Cooking pasta")
	if err := idx.AddVideo(v2, ch, []models.TranscriptSegment{
		seg("s4", "boil the water first", 0),
		seg("s5", "add salt generously", 4),
	}, nil); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}

	r := &KeywordRetriever{Index: idx}
	groups, err := r.Search(context.Background(), "soldering", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 video group, got %d", len(groups))
	}
	g := groups[0]
	if g.VideoID != "v1" || g.YouTubeVideoID != "yt-v1" {
		t.Fatalf("unexpected group %+v", g)
	}
	if len(g.Matches) != 2 {
		t.Fatalf("expected 2 segment matches, got %d", len(g.Matches))
	}
	if g.Channel.Handle != "acme" {
		t.Fatalf("channel metadata missing: %+v", g.Channel)
	}
	for _, m := range g.Matches {
		if m.SearchContext == "" {
			t.Fatalf("match %s has no stitched context", m.TranscriptID)
		}
	}
}

func TestAddVideoSkipsNonQuality(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	v, ch := testVideo("v1", "Background music only")
	v.IsQuality = boolPtr(false)
	if err := idx.AddVideo(v, ch, []models.TranscriptSegment{seg("s1", "[music]", 0)}, nil); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	if idx.VideoCount() != 0 {
		t.Fatalf("non-quality video should not be indexed")
	}
}

func TestAddVideoReplacesExisting(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	v, ch := testVideo("v1", "First pass")
	if err := idx.AddVideo(v, ch, []models.TranscriptSegment{seg("s1", "original transcript text", 0)}, nil); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	if err := idx.AddVideo(v, ch, []models.TranscriptSegment{seg("s2", "replacement transcript text", 0)}, nil); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	if idx.VideoCount() != 1 {
		t.Fatalf("expected 1 video, got %d", idx.VideoCount())
	}

	r := &KeywordRetriever{Index: idx}
	groups, err := r.Search(context.Background(), "original", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("stale segments should be gone, got %d groups", len(groups))
	}
}

func TestStitchContextBounds(t *testing.T) {
	t.Parallel()
	segs := []models.TranscriptSegment{
		seg("a", "one", 0), seg("b", "two", 1), seg("c", "three", 2),
		seg("d", "four", 3), seg("e", "five", 4), seg("f", "six", 5),
	}
	if got := stitchContext(segs, 0); got != "one two three" {
		t.Fatalf("stitchContext(0) = %q", got)
	}
	if got := stitchContext(segs, 3); got != "two three four five six" {
		t.Fatalf("stitchContext(3) = %q", got)
	}
	if got := stitchContext(segs, 5); got != "four five six" {
		t.Fatalf("stitchContext(5) = %q", got)
	}
}

func TestAnchorStartSkipsMusic(t *testing.T) {
	t.Parallel()
	segs := []models.TranscriptSegment{
		seg("a", "real speech here", 2),
		seg("b", "[Music]", 6),
		seg("c", "[applause]", 9),
	}
	if got := anchorStart(segs, 2); got != 2 {
		t.Fatalf("anchorStart = %v, want 2", got)
	}
	if got := anchorStart(segs, 0); got != 2 {
		t.Fatalf("anchorStart = %v, want 2", got)
	}
}

func TestSemanticSearchRanksBySimilarity(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	v1, ch := testVideo("v1", "About dogs")
	if err := idx.AddVideo(v1, ch, []models.TranscriptSegment{seg("s1", "dogs are loyal", 0)},
		[][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	v2, _ := testVideo("v2", "About cats")
	if err := idx.AddVideo(v2, ch, []models.TranscriptSegment{seg("s2", "cats are aloof", 0)},
		[][]float32{{0.5, 0.5, 0.7}}); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}

	r := &SemanticRetriever{Index: idx, Embedder: stubEmbedder{vec: []float32{1, 0, 0}}}
	groups, err := r.Search(context.Background(), "loyal pets", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].VideoID != "v1" {
		t.Fatalf("most similar video should rank first, got %s", groups[0].VideoID)
	}
	if groups[0].AvgSimilarity == nil || *groups[0].AvgSimilarity <= *groups[1].AvgSimilarity {
		t.Fatalf("similarity ordering wrong: %v vs %v", groups[0].AvgSimilarity, groups[1].AvgSimilarity)
	}
}

type stubEmbedder struct{ vec []float32 }

func (s stubEmbedder) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = s.vec
	}
	return out, nil
}
