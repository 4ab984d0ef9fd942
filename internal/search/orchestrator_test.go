package search

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/clipsearch/clipsearch/internal/relevance"
	"github.com/clipsearch/clipsearch/models"
)

type stubRetriever struct {
	groups []relevance.VideoResultGroup
	err    error
}

func (s stubRetriever) Search(context.Context, string, string, int) ([]relevance.VideoResultGroup, error) {
	return s.groups, s.err
}

type captureRecorder struct{ ch chan models.SearchAnalytics }

func (c *captureRecorder) Record(entry models.SearchAnalytics) { c.ch <- entry }

func rgroup(videoID string) relevance.VideoResultGroup {
	return relevance.VideoResultGroup{VideoID: videoID, Matches: []relevance.SearchMatch{{
		TranscriptID:  videoID + "-t1",
		Text:          "matched fragment",
		SearchContext: "Before it happened. The matched fragment sits here. After it ended.",
	}}}
}

func testOrch(kw, sem Retriever, rec Recorder) *Orchestrator {
	return &Orchestrator{
		Keyword:   kw,
		Semantic:  sem,
		Analytics: rec,
		Logger:    log.New(io.Discard, "", 0),
	}
}

func TestSearchHybridFusesAndExtracts(t *testing.T) {
	t.Parallel()
	rec := &captureRecorder{ch: make(chan models.SearchAnalytics, 1)}
	o := testOrch(
		stubRetriever{groups: []relevance.VideoResultGroup{rgroup("v1"), rgroup("v2")}},
		stubRetriever{groups: []relevance.VideoResultGroup{rgroup("v2"), rgroup("v3")}},
		rec,
	)

	res, err := o.SearchHybrid(context.Background(), Request{Query: "fragment", TenantID: "t1", CallerIP: "1.2.3.4", Limit: 50})
	if err != nil {
		t.Fatalf("SearchHybrid: %v", err)
	}
	if res.Keyword != 2 || res.Semantic != 2 || res.Merged != 3 {
		t.Fatalf("breakdown = %+v", res)
	}
	if res.Results[0].VideoID != "v2" {
		t.Fatalf("consensus video should rank first, got %s", res.Results[0].VideoID)
	}
	// Snippet widened to complete sentences, not the raw fragment.
	got := res.Results[0].Matches[0].Text
	if got == "matched fragment" {
		t.Fatalf("snippet extraction not applied")
	}

	select {
	case entry := <-rec.ch:
		if entry.SearchType != "hybrid" || entry.ResultCount != 3 || entry.TenantID != "t1" {
			t.Fatalf("unexpected analytics entry %+v", entry)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("analytics entry never recorded")
	}
}

func TestSearchHybridDegradesOnSemanticFailure(t *testing.T) {
	t.Parallel()
	o := testOrch(
		stubRetriever{groups: []relevance.VideoResultGroup{rgroup("v1")}},
		stubRetriever{err: errors.New("embedding service down")},
		nil,
	)
	res, err := o.SearchHybrid(context.Background(), Request{Query: "q", Limit: 10})
	if err != nil {
		t.Fatalf("one backend down must not fail the request: %v", err)
	}
	if res.Semantic != 0 || res.Keyword != 1 || len(res.Results) != 1 {
		t.Fatalf("expected keyword-only degradation, got %+v", res)
	}
	// Keyword-only top of a length-1 list scores 0.5.
	if res.Results[0].HybridScore != 0.5 {
		t.Fatalf("score = %f", res.Results[0].HybridScore)
	}
}

func TestSearchHybridDegradesOnKeywordFailure(t *testing.T) {
	t.Parallel()
	o := testOrch(
		stubRetriever{err: errors.New("index unavailable")},
		stubRetriever{groups: []relevance.VideoResultGroup{rgroup("v1")}},
		nil,
	)
	res, err := o.SearchHybrid(context.Background(), Request{Query: "q", Limit: 10})
	if err != nil {
		t.Fatalf("one backend down must not fail the request: %v", err)
	}
	if res.Keyword != 0 || res.Semantic != 1 {
		t.Fatalf("expected semantic-only degradation, got %+v", res)
	}
}

func TestSearchHybridBothBackendsFail(t *testing.T) {
	t.Parallel()
	o := testOrch(
		stubRetriever{err: errors.New("down")},
		stubRetriever{err: errors.New("also down")},
		nil,
	)
	if _, err := o.SearchHybrid(context.Background(), Request{Query: "q", Limit: 10}); err == nil {
		t.Fatalf("expected error when both backends fail")
	}
}

func TestSearchKeywordRecordsAnalytics(t *testing.T) {
	t.Parallel()
	rec := &captureRecorder{ch: make(chan models.SearchAnalytics, 1)}
	o := testOrch(stubRetriever{groups: []relevance.VideoResultGroup{rgroup("v1")}}, stubRetriever{}, rec)

	if _, err := o.SearchKeyword(context.Background(), Request{Query: "q", Limit: 10}); err != nil {
		t.Fatalf("SearchKeyword: %v", err)
	}
	select {
	case entry := <-rec.ch:
		if entry.SearchType != "keyword" {
			t.Fatalf("search type = %q", entry.SearchType)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("analytics entry never recorded")
	}
}
