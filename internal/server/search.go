package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clipsearch/clipsearch/internal/relevance"
	"github.com/clipsearch/clipsearch/internal/search"
	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
)

// SearchHandler exposes the three search endpoints.
type SearchHandler struct {
	Store        *store.Store
	Registry     *search.Registry
	DefaultLimit int
	MaxLimit     int
}

func (h *SearchHandler) Register(g *echo.Group) {
	g.GET("", h.keyword)
	g.GET("/semantic", h.semantic)
	g.GET("/hybrid", h.hybrid)
}

type hybridResponse struct {
	Query        string                       `json:"query"`
	Results      []relevance.VideoResultGroup `json:"results"`
	TotalResults int                          `json:"totalResults"`
	SearchType   string                       `json:"searchType"`
	Breakdown    breakdown                    `json:"breakdown"`
}

type breakdown struct {
	KeywordResults  int `json:"keywordResults"`
	SemanticResults int `json:"semanticResults"`
	MergedResults   int `json:"mergedResults"`
}

type searchResponse struct {
	Query        string                       `json:"query"`
	Results      []relevance.VideoResultGroup `json:"results"`
	TotalResults int                          `json:"totalResults"`
	SearchType   string                       `json:"searchType"`
}

// buildRequest validates query params and resolves the optional channel
// handle. A missing q is a 400; an unknown channel handle is a 404.
func (h *SearchHandler) buildRequest(c echo.Context) (search.Request, error) {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return search.Request{}, echo.NewHTTPError(http.StatusBadRequest, "query parameter q required")
	}
	tenant := tenantFrom(c)

	limit := h.DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return search.Request{}, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	if h.MaxLimit > 0 && limit > h.MaxLimit {
		limit = h.MaxLimit
	}

	req := search.Request{
		Query:    q,
		TenantID: tenant.ID,
		CallerIP: c.RealIP(),
		Limit:    limit,
	}
	if handle := strings.TrimSpace(c.QueryParam("channel")); handle != "" {
		ch, err := h.Store.GetChannelByHandle(c.Request().Context(), tenant.ID, handle)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return search.Request{}, echo.NewHTTPError(http.StatusNotFound, "unknown channel")
			}
			return search.Request{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		req.ChannelID = ch.ID
	}
	return req, nil
}

// orchestrator resolves the per-tenant search runtime.
func (h *SearchHandler) orchestrator(c echo.Context, req search.Request) (*search.Orchestrator, error) {
	ts, err := h.Registry.For(c.Request().Context(), req.TenantID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ts.Orch, nil
}

func (h *SearchHandler) keyword(c echo.Context) error {
	req, err := h.buildRequest(c)
	if err != nil {
		return err
	}
	orch, err := h.orchestrator(c, req)
	if err != nil {
		return err
	}
	groups, err := orch.SearchKeyword(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, searchResponse{
		Query:        req.Query,
		Results:      emptyIfNil(groups),
		TotalResults: len(groups),
		SearchType:   "keyword",
	})
}

func (h *SearchHandler) semantic(c echo.Context) error {
	req, err := h.buildRequest(c)
	if err != nil {
		return err
	}
	orch, err := h.orchestrator(c, req)
	if err != nil {
		return err
	}
	groups, err := orch.SearchSemantic(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, searchResponse{
		Query:        req.Query,
		Results:      emptyIfNil(groups),
		TotalResults: len(groups),
		SearchType:   "semantic",
	})
}

func (h *SearchHandler) hybrid(c echo.Context) error {
	req, err := h.buildRequest(c)
	if err != nil {
		return err
	}
	orch, err := h.orchestrator(c, req)
	if err != nil {
		return err
	}
	res, err := orch.SearchHybrid(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, hybridResponse{
		Query:        req.Query,
		Results:      emptyIfNil(res.Results),
		TotalResults: len(res.Results),
		SearchType:   "hybrid",
		Breakdown: breakdown{
			KeywordResults:  res.Keyword,
			SemanticResults: res.Semantic,
			MergedResults:   res.Merged,
		},
	})
}

func emptyIfNil(groups []relevance.VideoResultGroup) []relevance.VideoResultGroup {
	if groups == nil {
		return []relevance.VideoResultGroup{}
	}
	return groups
}
