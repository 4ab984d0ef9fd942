package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clipsearch/clipsearch/config"
	"github.com/clipsearch/clipsearch/internal/analytics"
	"github.com/clipsearch/clipsearch/internal/ingest"
	"github.com/clipsearch/clipsearch/internal/search"
	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/provider"
)

// Run wires every dependency and starts the HTTP server. addr overrides
// the configured listen address when non-empty.
func Run(addr, cfgPath string) error {
	cfg := config.LoadConfig(cfgPath)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()
	dsn, err := store.BuildDSN(
		cfg.Storage.Postgres.URL,
		cfg.Storage.Postgres.Host,
		cfg.Storage.Postgres.Port,
		cfg.Storage.Postgres.User,
		cfg.Storage.Postgres.Password,
		cfg.Storage.Postgres.DBName,
		cfg.Storage.Postgres.SSLMode,
	)
	if err != nil {
		return err
	}
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port),
		Password: cfg.Storage.Redis.Password,
		DB:       cfg.Storage.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed (%s:%s): %w", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port, err)
	}

	// Semantic search is optional: without an embedding key the hybrid
	// path degrades to keyword-only.
	var emb provider.Embedder
	if cfg.Embedding.APIKey != "" {
		emb, err = provider.NewEmbedder(cfg.Embedding)
		if err != nil {
			return err
		}
	} else {
		log.Printf("embedding.api_key not set; semantic search disabled")
	}

	recorder := analytics.NewRecorder(st, cfg.Analytics.NotifyURL, cfg.Analytics.NotifyTimeout, nil)
	registry := search.NewRegistry(st, emb, recorder, nil)

	secret := cfg.Server.JWTSecret
	if secret == "" {
		return fmt.Errorf("jwt secret not configured (server.jwt_secret)")
	}

	tc := &TenantCache{Store: st, Rdb: rdb, TTL: cfg.Server.TenantCacheTTL}
	api := e.Group("/api", withTenant(tc))

	auth := &AuthHandler{Store: st, Secret: []byte(secret)}
	auth.Register(api.Group("/auth"))

	sh := &SearchHandler{
		Store:        st,
		Registry:     registry,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	}
	sh.Register(api.Group("/search"))

	ch := &ChannelsHandler{Store: st}
	ch.Register(api.Group("/channels"), auth.Secret)
	ch.RegisterVideos(api.Group("/videos"))

	qh := &QualityHandler{Store: st, Registry: registry}
	qh.Register(api, auth.Secret)

	importer := &ingest.Importer{
		Store:      st,
		Source:     ingest.NewClient(cfg.YouTube),
		Embedder:   emb,
		Registry:   registry,
		EmbedBatch: cfg.Ingest.EmbedBatch,
		Logger:     log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
	worker := &ingest.Worker{
		Store:    st,
		Importer: importer,
		Rdb:      rdb,
		Cron:     cfg.Ingest.SyncCron,
		LockTTL:  cfg.Ingest.LockTTL,
		Stop:     make(chan struct{}),
		Logger:   importer.Logger,
	}
	worker.Start()

	if addr == "" {
		addr = cfg.Server.Address
		if addr == "" {
			addr = ":10080"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
