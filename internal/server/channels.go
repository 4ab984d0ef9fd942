package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
)

// ChannelsHandler is the admin CRUD surface over tracked channels.
type ChannelsHandler struct {
	Store *store.Store
}

func (h *ChannelsHandler) Register(g *echo.Group, secret []byte) {
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/:id/videos", h.listVideos)
	g.POST("", withAuth(h.create, secret))
	g.PUT("/:id", withAuth(h.update, secret))
	g.DELETE("/:id", withAuth(h.remove, secret))
}

// RegisterVideos exposes the flat video listing keyed by channel.
func (h *ChannelsHandler) RegisterVideos(g *echo.Group) {
	g.GET("", h.listVideosByQuery)
}

type channelRequest struct {
	YouTubeID   string `json:"youtube_id"`
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

func (h *ChannelsHandler) list(c echo.Context) error {
	tenant := tenantFrom(c)
	channels, err := h.Store.ListChannels(c.Request().Context(), tenant.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	return c.JSON(http.StatusOK, channels)
}

func (h *ChannelsHandler) get(c echo.Context) error {
	tenant := tenantFrom(c)
	ch, err := h.Store.GetChannel(c.Request().Context(), tenant.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *ChannelsHandler) listVideos(c echo.Context) error {
	tenant := tenantFrom(c)
	ch, err := h.Store.GetChannel(c.Request().Context(), tenant.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	videos, err := h.Store.ListVideosByChannel(c.Request().Context(), ch.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return c.JSON(http.StatusOK, videos)
}

// listVideosByQuery accepts either a channel id or a handle.
func (h *ChannelsHandler) listVideosByQuery(c echo.Context) error {
	tenant := tenantFrom(c)
	ref := c.QueryParam("channel")
	if ref == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter channel required")
	}
	var ch models.Channel
	var err error
	if _, uuidErr := uuid.Parse(ref); uuidErr == nil {
		ch, err = h.Store.GetChannel(c.Request().Context(), tenant.ID, ref)
	} else {
		ch, err = h.Store.GetChannelByHandle(c.Request().Context(), tenant.ID, ref)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	videos, err := h.Store.ListVideosByChannel(c.Request().Context(), ch.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return c.JSON(http.StatusOK, videos)
}

func (h *ChannelsHandler) create(c echo.Context) error {
	tenant := tenantFrom(c)
	var req channelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.YouTubeID == "" || req.Handle == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "youtube_id and handle required")
	}
	ch, err := h.Store.CreateChannel(c.Request().Context(), models.Channel{
		TenantID:    tenant.ID,
		YouTubeID:   req.YouTubeID,
		Handle:      req.Handle,
		Name:        req.Name,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, ch)
}

func (h *ChannelsHandler) update(c echo.Context) error {
	tenant := tenantFrom(c)
	var req channelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.Store.UpdateChannel(c.Request().Context(), tenant.ID, c.Param("id"), req.Name, req.Description, req.Thumbnail)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	ch, err := h.Store.GetChannel(c.Request().Context(), tenant.ID, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *ChannelsHandler) remove(c echo.Context) error {
	tenant := tenantFrom(c)
	err := h.Store.DeleteChannel(c.Request().Context(), tenant.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
