package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Tenant is one customer of the platform. Requests are scoped to a tenant
// resolved from the Host header.
type Tenant struct {
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Channel is a tracked YouTube channel belonging to a tenant.
type Channel struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	YouTubeID   string    `json:"youtube_id"`
	Handle      string    `json:"handle"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Video is a single imported YouTube video.
//
// IsQuality is the persisted transcript-quality verdict: nil until the
// transcript has been classified, then fixed until an explicit re-check.
type Video struct {
	ID            string    `json:"id"`
	ChannelID     string    `json:"channel_id"`
	YouTubeID     string    `json:"youtube_id"`
	Title         string    `json:"title"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	PublishedAt   time.Time `json:"published_at"`
	Duration      int       `json:"duration"` // seconds
	HasTranscript bool      `json:"has_transcript"`
	IsQuality     *bool     `json:"is_quality,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TranscriptSegment is a contiguous span of spoken text within one video.
// Segments are ordered by StartTime ascending; caption sources may emit
// overlapping spans and they are processed in the order given.
type TranscriptSegment struct {
	ID        string  `json:"id"`
	VideoID   string  `json:"video_id"`
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"` // seconds from video start
	Duration  float64 `json:"duration"`   // seconds
}

// SearchAnalytics is one logged search request.
type SearchAnalytics struct {
	TenantID    string    `json:"tenant_id"`
	ChannelID   string    `json:"channel_id,omitempty"`
	Query       string    `json:"query"`
	SearchType  string    `json:"search_type"`
	ResultCount int       `json:"result_count"`
	CallerIP    string    `json:"caller_ip"`
	CreatedAt   time.Time `json:"created_at"`
}
