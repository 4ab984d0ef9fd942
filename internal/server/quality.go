package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clipsearch/clipsearch/internal/relevance"
	"github.com/clipsearch/clipsearch/internal/search"
	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
)

// QualityHandler re-runs the transcript-quality classifier on demand and
// keeps the in-memory index in line with the new verdicts.
type QualityHandler struct {
	Store    *store.Store
	Registry *search.Registry
}

func (h *QualityHandler) Register(g *echo.Group, secret []byte) {
	g.POST("/videos/:id/quality/recheck", withAuth(h.recheckVideo, secret))
	g.POST("/channels/:id/quality/recheck", withAuth(h.recheckChannel, secret))
}

type qualityVerdict struct {
	VideoID   string `json:"videoId"`
	IsQuality bool   `json:"isQuality"`
}

func (h *QualityHandler) recheckVideo(c echo.Context) error {
	tenant := tenantFrom(c)
	ctx := c.Request().Context()

	video, err := h.Store.GetVideo(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	channel, err := h.Store.GetChannel(ctx, tenant.ID, video.ChannelID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	verdict, err := h.recheck(ctx, video, channel)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, verdict)
}

func (h *QualityHandler) recheckChannel(c echo.Context) error {
	tenant := tenantFrom(c)
	ctx := c.Request().Context()

	channel, err := h.Store.GetChannel(ctx, tenant.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	videos, err := h.Store.ListVideosByChannel(ctx, channel.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	verdicts := make([]qualityVerdict, 0, len(videos))
	for _, v := range videos {
		if !v.HasTranscript {
			continue
		}
		verdict, err := h.recheck(ctx, v, channel)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		verdicts = append(verdicts, verdict)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"channelId": channel.ID,
		"rechecked": len(verdicts),
		"verdicts":  verdicts,
	})
}

// recheck classifies one video's stored transcript, persists the verdict
// and re-indexes or drops the video accordingly.
func (h *QualityHandler) recheck(ctx context.Context, video models.Video, channel models.Channel) (qualityVerdict, error) {
	segments, err := h.Store.ListSegments(ctx, video.ID)
	if err != nil {
		return qualityVerdict{}, err
	}
	isQuality := relevance.IsQualityTranscript(segments)
	if err := h.Store.SetVideoQuality(ctx, video.ID, isQuality); err != nil {
		return qualityVerdict{}, err
	}
	video.IsQuality = &isQuality

	if h.Registry != nil {
		idx, err := h.Registry.IndexFor(ctx, channel.TenantID)
		if err != nil {
			return qualityVerdict{}, err
		}
		if !isQuality {
			idx.RemoveVideo(video.ID)
		} else {
			vecMap, err := h.Store.ListSegmentEmbeddings(ctx, video.ID)
			if err != nil {
				return qualityVerdict{}, err
			}
			var vectors [][]float32
			if len(vecMap) > 0 {
				vectors = make([][]float32, len(segments))
				for i, seg := range segments {
					vectors[i] = vecMap[seg.ID]
				}
			}
			if err := idx.AddVideo(video, channel, segments, vectors); err != nil {
				return qualityVerdict{}, err
			}
		}
	}
	return qualityVerdict{VideoID: video.ID, IsQuality: isQuality}, nil
}
