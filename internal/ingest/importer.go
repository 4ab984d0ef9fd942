package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/clipsearch/clipsearch/internal/relevance"
	"github.com/clipsearch/clipsearch/internal/search"
	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
	"github.com/clipsearch/clipsearch/provider"
)

// TranscriptSource is the slice of the YouTube client the importer needs.
type TranscriptSource interface {
	Channel(ctx context.Context, youtubeID string) (ChannelInfo, error)
	ListVideos(ctx context.Context, uploadsPlaylist string) ([]VideoInfo, error)
	Transcript(ctx context.Context, youtubeID string) ([]models.TranscriptSegment, error)
}

// Stats summarizes one channel import.
type Stats struct {
	Videos      int `json:"videos"`
	Transcripts int `json:"transcripts"`
	Quality     int `json:"quality"`
	Embedded    int `json:"embedded"`
}

// Importer pulls a channel's videos and captions, classifies transcript
// quality at import time, embeds quality transcripts and keeps the live
// index current. Per-video failures are logged and skipped; the import
// carries on.
type Importer struct {
	Store      *store.Store
	Source     TranscriptSource
	Embedder   provider.Embedder
	Registry   *search.Registry
	EmbedBatch int
	Logger     *log.Logger
}

func (im *Importer) logf(format string, args ...interface{}) {
	if im.Logger != nil {
		im.Logger.Printf(format, args...)
	}
}

// ImportChannel syncs one channel end to end.
func (im *Importer) ImportChannel(ctx context.Context, channel models.Channel) (Stats, error) {
	info, err := im.Source.Channel(ctx, channel.YouTubeID)
	if err != nil {
		return Stats{}, fmt.Errorf("import channel %s: %w", channel.Handle, err)
	}
	if err := im.Store.UpdateChannel(ctx, channel.TenantID, channel.ID, info.Title, info.Description, info.Thumbnail); err != nil {
		return Stats{}, fmt.Errorf("import channel %s: %w", channel.Handle, err)
	}
	channel.Name = info.Title
	channel.Description = info.Description
	channel.Thumbnail = info.Thumbnail

	videos, err := im.Source.ListVideos(ctx, info.UploadsPlaylist)
	if err != nil {
		return Stats{}, fmt.Errorf("import channel %s: %w", channel.Handle, err)
	}

	var stats Stats
	for _, vi := range videos {
		if err := im.importVideo(ctx, channel, vi, &stats); err != nil {
			im.logf("video %s: %v", vi.YouTubeID, err)
		}
	}
	return stats, nil
}

func (im *Importer) importVideo(ctx context.Context, channel models.Channel, vi VideoInfo, stats *Stats) error {
	segments, err := im.Source.Transcript(ctx, vi.YouTubeID)
	if err != nil {
		im.logf("transcript %s: %v", vi.YouTubeID, err)
		segments = nil
	}

	video, err := im.Store.UpsertVideo(ctx, models.Video{
		ChannelID:     channel.ID,
		YouTubeID:     vi.YouTubeID,
		Title:         vi.Title,
		Thumbnail:     vi.Thumbnail,
		PublishedAt:   vi.PublishedAt,
		Duration:      vi.Duration,
		HasTranscript: len(segments) > 0,
	})
	if err != nil {
		return err
	}
	stats.Videos++
	if len(segments) == 0 {
		return nil
	}

	saved, err := im.Store.ReplaceSegments(ctx, video.ID, segments)
	if err != nil {
		return err
	}
	stats.Transcripts++

	isQuality := relevance.IsQualityTranscript(saved)
	if err := im.Store.SetVideoQuality(ctx, video.ID, isQuality); err != nil {
		return err
	}
	video.IsQuality = &isQuality
	video.HasTranscript = true

	var vectors [][]float32
	if isQuality {
		stats.Quality++
		vectors, err = im.embedSegments(ctx, video.ID, saved)
		if err != nil {
			// Keyword search still works without vectors.
			im.logf("embed %s: %v", vi.YouTubeID, err)
			vectors = nil
		} else if vectors != nil {
			stats.Embedded++
		}
	}

	if im.Registry != nil {
		idx, err := im.Registry.IndexFor(ctx, channel.TenantID)
		if err != nil {
			return err
		}
		if !isQuality {
			idx.RemoveVideo(video.ID)
			return nil
		}
		return idx.AddVideo(video, channel, saved, vectors)
	}
	return nil
}

// embedSegments embeds a transcript in batches and persists each vector.
// Returns the vector slice parallel to segments, or nil when embedding is
// not configured.
func (im *Importer) embedSegments(ctx context.Context, videoID string, segments []models.TranscriptSegment) ([][]float32, error) {
	if im.Embedder == nil {
		return nil, nil
	}
	batch := im.EmbedBatch
	if batch <= 0 {
		batch = 64
	}
	vectors := make([][]float32, len(segments))
	for lo := 0; lo < len(segments); lo += batch {
		hi := lo + batch
		if hi > len(segments) {
			hi = len(segments)
		}
		texts := make([]string, 0, hi-lo)
		for _, seg := range segments[lo:hi] {
			texts = append(texts, seg.Text)
		}
		vecs, err := im.Embedder.CreateEmbedding(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != hi-lo {
			return nil, fmt.Errorf("embedding count mismatch: %d for %d texts", len(vecs), hi-lo)
		}
		for i, vec := range vecs {
			seg := segments[lo+i]
			if err := im.Store.UpsertSegmentEmbedding(ctx, seg.ID, videoID, vec); err != nil {
				return nil, err
			}
			vectors[lo+i] = vec
		}
	}
	return vectors, nil
}
