package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clipsearch/clipsearch/models"
)

const videoColumns = `id, channel_id, youtube_id, title, thumbnail, published_at, duration, has_transcript, is_quality, created_at, updated_at`

func scanVideo(row interface{ Scan(...interface{}) error }) (models.Video, error) {
	var v models.Video
	var thumb sql.NullString
	var quality sql.NullBool
	err := row.Scan(&v.ID, &v.ChannelID, &v.YouTubeID, &v.Title, &thumb, &v.PublishedAt,
		&v.Duration, &v.HasTranscript, &quality, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return models.Video{}, err
	}
	if thumb.Valid {
		v.Thumbnail = thumb.String
	}
	if quality.Valid {
		q := quality.Bool
		v.IsQuality = &q
	}
	return v, nil
}

// UpsertVideo inserts or refreshes a video by its YouTube id. The quality
// verdict is left untouched on conflict; it only changes through
// SetVideoQuality.
func (s *Store) UpsertVideo(ctx context.Context, v models.Video) (models.Video, error) {
	row := s.DB.QueryRowContext(ctx, `
INSERT INTO videos (channel_id, youtube_id, title, thumbnail, published_at, duration, has_transcript)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (channel_id, youtube_id) DO UPDATE SET
  title=EXCLUDED.title,
  thumbnail=EXCLUDED.thumbnail,
  published_at=EXCLUDED.published_at,
  duration=EXCLUDED.duration,
  has_transcript=EXCLUDED.has_transcript,
  updated_at=now()
RETURNING `+videoColumns+`
`, v.ChannelID, v.YouTubeID, v.Title, nullableString(v.Thumbnail), v.PublishedAt, v.Duration, v.HasTranscript)
	out, err := scanVideo(row)
	if err != nil {
		return models.Video{}, fmt.Errorf("upsert video: %w", err)
	}
	return out, nil
}

// GetVideo fetches one video.
func (s *Store) GetVideo(ctx context.Context, id string) (models.Video, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT `+videoColumns+` FROM videos WHERE id=$1
`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Video{}, models.ErrNotFound
	}
	if err != nil {
		return models.Video{}, fmt.Errorf("get video: %w", err)
	}
	return v, nil
}

// ListVideosByChannel returns a channel's videos, newest first.
func (s *Store) ListVideosByChannel(ctx context.Context, channelID string) ([]models.Video, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT `+videoColumns+` FROM videos WHERE channel_id=$1 ORDER BY published_at DESC
`, channelID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()
	var out []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("list videos: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetVideoQuality writes the transcript-quality verdict back onto the
// video record. This is the only mutation path for the verdict.
func (s *Store) SetVideoQuality(ctx context.Context, videoID string, isQuality bool) error {
	res, err := s.DB.ExecContext(ctx, `
UPDATE videos SET is_quality=$2, updated_at=now() WHERE id=$1
`, videoID, isQuality)
	if err != nil {
		return fmt.Errorf("set video quality: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
