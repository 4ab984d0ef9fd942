package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/clipsearch/clipsearch/models"
)

// ReplaceSegments swaps a video's transcript atomically and flips
// has_transcript. Segment embeddings are cascade-deleted with the old rows
// and re-written by UpsertSegmentEmbedding afterwards.
func (s *Store) ReplaceSegments(ctx context.Context, videoID string, segments []models.TranscriptSegment) ([]models.TranscriptSegment, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("replace segments: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_segments WHERE video_id=$1`, videoID); err != nil {
		return nil, fmt.Errorf("replace segments: %w", err)
	}
	out := make([]models.TranscriptSegment, 0, len(segments))
	for _, seg := range segments {
		var id string
		err := tx.QueryRowContext(ctx, `
INSERT INTO transcript_segments (video_id, text, start_time, duration)
VALUES ($1,$2,$3,$4)
RETURNING id
`, videoID, seg.Text, seg.StartTime, seg.Duration).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("replace segments: %w", err)
		}
		seg.ID = id
		seg.VideoID = videoID
		out = append(out, seg)
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE videos SET has_transcript=$2, updated_at=now() WHERE id=$1
`, videoID, len(out) > 0); err != nil {
		return nil, fmt.Errorf("replace segments: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("replace segments: %w", err)
	}
	return out, nil
}

// ListSegments returns a video's transcript ordered by start time.
func (s *Store) ListSegments(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, video_id, text, start_time, duration
FROM transcript_segments WHERE video_id=$1 ORDER BY start_time ASC
`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()
	var out []models.TranscriptSegment
	for rows.Next() {
		var seg models.TranscriptSegment
		if err := rows.Scan(&seg.ID, &seg.VideoID, &seg.Text, &seg.StartTime, &seg.Duration); err != nil {
			return nil, fmt.Errorf("list segments: %w", err)
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

// UpsertSegmentEmbedding stores the semantic vector for one segment.
func (s *Store) UpsertSegmentEmbedding(ctx context.Context, segmentID, videoID string, vector []float32) error {
	lit, err := encodeVectorLiteral(vector)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
INSERT INTO segment_embeddings (segment_id, video_id, embedding)
VALUES ($1,$2,$3::vector)
ON CONFLICT (segment_id) DO UPDATE SET embedding=EXCLUDED.embedding
`, segmentID, videoID, lit)
	if err != nil {
		return fmt.Errorf("upsert segment embedding: %w", err)
	}
	return nil
}

// ListSegmentEmbeddings returns segment id -> vector for one video.
func (s *Store) ListSegmentEmbeddings(ctx context.Context, videoID string) (map[string][]float32, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT segment_id, embedding::text FROM segment_embeddings WHERE video_id=$1
`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list segment embeddings: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]float32)
	for rows.Next() {
		var id, lit string
		if err := rows.Scan(&id, &lit); err != nil {
			return nil, fmt.Errorf("list segment embeddings: %w", err)
		}
		vec, err := decodeVectorLiteral(lit)
		if err != nil {
			return nil, fmt.Errorf("list segment embeddings: %w", err)
		}
		out[id] = vec
	}
	return out, rows.Err()
}

// InsertSearchAnalytics logs one completed search.
func (s *Store) InsertSearchAnalytics(ctx context.Context, entry models.SearchAnalytics) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO search_analytics (tenant_id, channel_id, query, search_type, result_count, caller_ip)
VALUES ($1,$2,$3,$4,$5,$6)
`, entry.TenantID, nullableString(entry.ChannelID), entry.Query, entry.SearchType, entry.ResultCount, entry.CallerIP)
	if err != nil {
		return fmt.Errorf("insert search analytics: %w", err)
	}
	return nil
}

// IndexableVideo bundles everything the in-memory index needs for one
// video: the video, its channel, ordered segments and any vectors.
type IndexableVideo struct {
	Video    models.Video
	Channel  models.Channel
	Segments []models.TranscriptSegment
	Vectors  map[string][]float32 // segment id -> vector
}

// LoadIndexable returns every transcript-bearing video of a tenant's
// channels for index builds. Non-quality videos are included; the index
// decides what to skip.
func (s *Store) LoadIndexable(ctx context.Context, tenantID string) ([]IndexableVideo, error) {
	channels, err := s.ListChannels(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var out []IndexableVideo
	for _, ch := range channels {
		videos, err := s.ListVideosByChannel(ctx, ch.ID)
		if err != nil {
			return nil, err
		}
		for _, v := range videos {
			if !v.HasTranscript {
				continue
			}
			segs, err := s.ListSegments(ctx, v.ID)
			if err != nil {
				return nil, err
			}
			vecs, err := s.ListSegmentEmbeddings(ctx, v.ID)
			if err != nil {
				return nil, err
			}
			out = append(out, IndexableVideo{Video: v, Channel: ch, Segments: segs, Vectors: vecs})
		}
	}
	return out, nil
}

func encodeVectorLiteral(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", fmt.Errorf("vector must not be empty")
	}
	var builder strings.Builder
	builder.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	builder.WriteByte(']')
	return builder.String(), nil
}

func decodeVectorLiteral(lit string) ([]float32, error) {
	lit = strings.TrimSpace(lit)
	if lit == "" {
		return nil, fmt.Errorf("empty vector literal")
	}
	lit = strings.TrimPrefix(lit, "[")
	lit = strings.TrimSuffix(lit, "]")
	parts := strings.Split(lit, ",")
	vec := make([]float32, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector value %q: %w", value, err)
		}
		vec = append(vec, float32(f))
	}
	return vec, nil
}
