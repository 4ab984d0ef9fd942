package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
)

// TenantCache resolves tenants by domain through redis with an injected
// TTL, falling back to Postgres on miss. An explicit cache object rather
// than a package-level singleton so tests can construct their own.
type TenantCache struct {
	Store *store.Store
	Rdb   *redis.Client
	TTL   time.Duration
}

func (tc *TenantCache) Resolve(ctx context.Context, domain string) (models.Tenant, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	key := "tenant:domain:" + domain

	if tc.Rdb != nil {
		if raw, err := tc.Rdb.Get(ctx, key).Result(); err == nil {
			var t models.Tenant
			if json.Unmarshal([]byte(raw), &t) == nil {
				return t, nil
			}
		}
	}

	t, err := tc.Store.GetTenantByDomain(ctx, domain)
	if err != nil {
		return models.Tenant{}, err
	}
	if tc.Rdb != nil {
		if raw, err := json.Marshal(t); err == nil {
			_ = tc.Rdb.Set(ctx, key, raw, tc.TTL).Err()
		}
	}
	return t, nil
}

// withTenant resolves the request's tenant from the Host header and makes
// it available to handlers.
func withTenant(tc *TenantCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			host := c.Request().Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			tenant, err := tc.Resolve(c.Request().Context(), host)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, "unknown tenant domain")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			c.Set("tenant", tenant)
			return next(c)
		}
	}
}

func tenantFrom(c echo.Context) models.Tenant {
	if t, ok := c.Get("tenant").(models.Tenant); ok {
		return t
	}
	return models.Tenant{}
}
