package relevance

import "time"

// SearchMatch is one place where the query was found inside a video's
// transcript, as reported by a retrieval backend.
type SearchMatch struct {
	TranscriptID string `json:"transcriptId"`
	VideoID      string `json:"videoId"`
	// Text is the display snippet; adapters seed it with the matched
	// segment's raw text and the orchestrator widens it to full sentences.
	Text string `json:"text"`
	// SearchContext is the stitched window of adjacent segment text the
	// backend indexed. Not serialized; consumed by snippet extraction.
	SearchContext string `json:"-"`
	// StartTime may be pulled back to an earlier non-music anchor for
	// playback; ActualStartTime is the matched segment's raw offset.
	StartTime       float64 `json:"startTime"`
	ActualStartTime float64 `json:"actualStartTime"`
	Duration        float64 `json:"duration"`
	// Score is backend-specific and not comparable across backends.
	Score float64 `json:"-"`
}

// ChannelRef is the channel metadata carried on a result group.
type ChannelRef struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// VideoResultGroup aggregates all matches for one video. Fusion operates at
// this granularity: whole-group scores, never single-match scores.
type VideoResultGroup struct {
	VideoID        string        `json:"videoId"`
	YouTubeVideoID string        `json:"youtubeVideoId"`
	Title          string        `json:"title"`
	Thumbnail      string        `json:"thumbnail,omitempty"`
	PublishedAt    time.Time     `json:"publishedAt"`
	Duration       int           `json:"duration"`
	Channel        ChannelRef    `json:"channel"`
	Matches        []SearchMatch `json:"matches"`
	HybridScore    float64       `json:"hybridScore"`
	KeywordRank    *int          `json:"keywordRank,omitempty"`
	SemanticRank   *int          `json:"semanticRank,omitempty"`
	AvgSimilarity  *float64      `json:"avgSimilarity,omitempty"`
}
