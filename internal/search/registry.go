package search

import (
	"context"
	"log"
	"sync"

	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/provider"
)

// TenantSearch is one tenant's retrieval runtime: the in-memory index plus
// the orchestrator wired over it.
type TenantSearch struct {
	Index *Index
	Orch  *Orchestrator
}

// Registry builds and caches per-tenant search runtimes. Indexes are loaded
// lazily from Postgres on a tenant's first search and then kept warm;
// writers (ingest, quality rechecks) mutate the cached index in place.
type Registry struct {
	Store     *store.Store
	Embedder  provider.Embedder
	Analytics Recorder
	Logger    *log.Logger

	mu      sync.Mutex
	tenants map[string]*TenantSearch
}

func NewRegistry(st *store.Store, emb provider.Embedder, rec Recorder, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(log.Writer(), "[SEARCH] ", log.LstdFlags)
	}
	return &Registry{
		Store:     st,
		Embedder:  emb,
		Analytics: rec,
		Logger:    logger,
		tenants:   make(map[string]*TenantSearch),
	}
}

// For returns the tenant's search runtime, building it on first use.
func (r *Registry) For(ctx context.Context, tenantID string) (*TenantSearch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ts, ok := r.tenants[tenantID]; ok {
		return ts, nil
	}

	idx, err := NewIndex()
	if err != nil {
		return nil, err
	}
	indexable, err := r.Store.LoadIndexable(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, iv := range indexable {
		vectors := vectorsFor(iv)
		if err := idx.AddVideo(iv.Video, iv.Channel, iv.Segments, vectors); err != nil {
			return nil, err
		}
	}

	ts := &TenantSearch{
		Index: idx,
		Orch: &Orchestrator{
			Keyword:   &KeywordRetriever{Index: idx},
			Semantic:  &SemanticRetriever{Index: idx, Embedder: r.Embedder},
			Analytics: r.Analytics,
			Logger:    r.Logger,
		},
	}
	r.tenants[tenantID] = ts
	return ts, nil
}

// IndexFor returns just the tenant's index, for writers.
func (r *Registry) IndexFor(ctx context.Context, tenantID string) (*Index, error) {
	ts, err := r.For(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ts.Index, nil
}

// vectorsFor flattens a stored embedding map into the slice parallel to
// segments that the index wants. Nil when the video has no embeddings.
func vectorsFor(iv store.IndexableVideo) [][]float32 {
	if len(iv.Vectors) == 0 {
		return nil
	}
	vectors := make([][]float32, len(iv.Segments))
	for i, seg := range iv.Segments {
		vectors[i] = iv.Vectors[seg.ID]
	}
	return vectors
}
