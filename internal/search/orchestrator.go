package search

import (
	"context"
	"fmt"
	"log"

	"github.com/clipsearch/clipsearch/internal/relevance"
	"github.com/clipsearch/clipsearch/models"
)

// Recorder receives completed-search analytics. Implementations must be
// safe to call from detached goroutines.
type Recorder interface {
	Record(entry models.SearchAnalytics)
}

// Request carries one search invocation through the orchestrator.
type Request struct {
	Query     string
	ChannelID string
	TenantID  string
	CallerIP  string
	Limit     int
}

// Result is the hybrid search outcome plus the per-backend breakdown.
type Result struct {
	Results  []relevance.VideoResultGroup
	Keyword  int // group count before fusion
	Semantic int
	Merged   int
}

// Orchestrator wires the two retrieval backends to the relevance engine.
// A semantic failure degrades to keyword-only (and vice versa); the request
// errors only when both backends fail. Analytics never block or fail a
// response.
type Orchestrator struct {
	Keyword   Retriever
	Semantic  Retriever
	Analytics Recorder
	Logger    *log.Logger
}

// SearchKeyword runs the keyword path only.
func (o *Orchestrator) SearchKeyword(ctx context.Context, req Request) ([]relevance.VideoResultGroup, error) {
	groups, err := o.Keyword.Search(ctx, req.Query, req.ChannelID, req.Limit)
	if err != nil {
		return nil, err
	}
	extractSnippets(groups)
	o.record(req, "keyword", len(groups))
	return groups, nil
}

// SearchSemantic runs the semantic path only.
func (o *Orchestrator) SearchSemantic(ctx context.Context, req Request) ([]relevance.VideoResultGroup, error) {
	groups, err := o.Semantic.Search(ctx, req.Query, req.ChannelID, req.Limit)
	if err != nil {
		return nil, err
	}
	extractSnippets(groups)
	o.record(req, "semantic", len(groups))
	return groups, nil
}

// SearchHybrid runs both backends concurrently and fuses their rankings.
func (o *Orchestrator) SearchHybrid(ctx context.Context, req Request) (Result, error) {
	type outcome struct {
		groups []relevance.VideoResultGroup
		err    error
	}
	kwCh := make(chan outcome, 1)
	semCh := make(chan outcome, 1)
	go func() {
		g, err := o.Keyword.Search(ctx, req.Query, req.ChannelID, req.Limit)
		kwCh <- outcome{g, err}
	}()
	go func() {
		g, err := o.Semantic.Search(ctx, req.Query, req.ChannelID, req.Limit)
		semCh <- outcome{g, err}
	}()
	kw := <-kwCh
	sem := <-semCh

	if kw.err != nil && sem.err != nil {
		return Result{}, fmt.Errorf("both retrieval backends failed: keyword: %v; semantic: %v", kw.err, sem.err)
	}
	if kw.err != nil {
		o.logf("keyword backend failed, degrading to semantic-only: %v", kw.err)
		kw.groups = nil
	}
	if sem.err != nil {
		o.logf("semantic backend failed, degrading to keyword-only: %v", sem.err)
		sem.groups = nil
	}

	fused := relevance.FuseResults(kw.groups, sem.groups, req.Limit)
	extractSnippets(fused)

	o.record(req, "hybrid", len(fused))
	return Result{
		Results:  fused,
		Keyword:  len(kw.groups),
		Semantic: len(sem.groups),
		Merged:   len(fused),
	}, nil
}

// extractSnippets widens each match's display text to complete sentences.
func extractSnippets(groups []relevance.VideoResultGroup) {
	for gi := range groups {
		for mi := range groups[gi].Matches {
			m := &groups[gi].Matches[mi]
			m.Text = relevance.ExtractCompleteSentences(m.SearchContext, m.Text)
		}
	}
}

// record hands analytics off to a detached goroutine. Failures inside the
// recorder are its own problem; the search response never waits.
func (o *Orchestrator) record(req Request, searchType string, count int) {
	if o.Analytics == nil {
		return
	}
	entry := models.SearchAnalytics{
		TenantID:    req.TenantID,
		ChannelID:   req.ChannelID,
		Query:       req.Query,
		SearchType:  searchType,
		ResultCount: count,
		CallerIP:    req.CallerIP,
	}
	go o.Analytics.Record(entry)
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}
