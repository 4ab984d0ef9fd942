package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clipsearch/clipsearch/models"
)

const channelColumns = `id, tenant_id, youtube_id, handle, name, description, thumbnail, created_at, updated_at`

func scanChannel(row interface{ Scan(...interface{}) error }) (models.Channel, error) {
	var ch models.Channel
	var desc, thumb sql.NullString
	err := row.Scan(&ch.ID, &ch.TenantID, &ch.YouTubeID, &ch.Handle, &ch.Name, &desc, &thumb, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return models.Channel{}, err
	}
	if desc.Valid {
		ch.Description = desc.String
	}
	if thumb.Valid {
		ch.Thumbnail = thumb.String
	}
	return ch, nil
}

// CreateChannel inserts a channel for a tenant.
func (s *Store) CreateChannel(ctx context.Context, ch models.Channel) (models.Channel, error) {
	if strings.TrimSpace(ch.YouTubeID) == "" {
		return models.Channel{}, fmt.Errorf("channel youtube_id required")
	}
	row := s.DB.QueryRowContext(ctx, `
INSERT INTO channels (tenant_id, youtube_id, handle, name, description, thumbnail)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING `+channelColumns+`
`, ch.TenantID, ch.YouTubeID, ch.Handle, ch.Name, nullableString(ch.Description), nullableString(ch.Thumbnail))
	out, err := scanChannel(row)
	if err != nil {
		return models.Channel{}, fmt.Errorf("create channel: %w", err)
	}
	return out, nil
}

// GetChannel fetches one channel scoped to a tenant.
func (s *Store) GetChannel(ctx context.Context, tenantID, id string) (models.Channel, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT `+channelColumns+` FROM channels WHERE tenant_id=$1 AND id=$2
`, tenantID, id)
	ch, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Channel{}, models.ErrNotFound
	}
	if err != nil {
		return models.Channel{}, fmt.Errorf("get channel: %w", err)
	}
	return ch, nil
}

// GetChannelByHandle resolves a channel by its public handle.
func (s *Store) GetChannelByHandle(ctx context.Context, tenantID, handle string) (models.Channel, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT `+channelColumns+` FROM channels WHERE tenant_id=$1 AND handle=$2
`, tenantID, handle)
	ch, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Channel{}, models.ErrNotFound
	}
	if err != nil {
		return models.Channel{}, fmt.Errorf("get channel by handle: %w", err)
	}
	return ch, nil
}

// ListChannels returns all channels for a tenant, newest first.
func (s *Store) ListChannels(ctx context.Context, tenantID string) ([]models.Channel, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT `+channelColumns+` FROM channels WHERE tenant_id=$1 ORDER BY created_at DESC
`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()
	var out []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("list channels: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// UpdateChannel updates mutable channel metadata.
func (s *Store) UpdateChannel(ctx context.Context, tenantID, id, name, description, thumbnail string) error {
	res, err := s.DB.ExecContext(ctx, `
UPDATE channels SET name=$3, description=$4, thumbnail=$5, updated_at=now()
WHERE tenant_id=$1 AND id=$2
`, tenantID, id, name, nullableString(description), nullableString(thumbnail))
	if err != nil {
		return fmt.Errorf("update channel: %w", err)
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

// DeleteChannel removes a channel and cascades to its videos and segments.
func (s *Store) DeleteChannel(ctx context.Context, tenantID, id string) error {
	res, err := s.DB.ExecContext(ctx, `
DELETE FROM channels WHERE tenant_id=$1 AND id=$2
`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
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

func nullableString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
