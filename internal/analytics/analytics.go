package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipsearch_searches_total",
		Help: "Completed searches by type.",
	}, []string{"type"})
	searchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clipsearch_search_results",
		Help:    "Result group counts per search.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})
)

// Recorder persists search analytics, bumps metrics and fires the
// best-effort notifier. Record is called from detached goroutines and
// must never panic or surface errors to the search path: everything here
// is log-and-continue.
type Recorder struct {
	Store     *store.Store
	NotifyURL string
	Logger    *log.Logger
	client    *http.Client
}

func NewRecorder(st *store.Store, notifyURL string, timeout time.Duration, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(log.Writer(), "[ANALYTICS] ", log.LstdFlags)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Recorder{
		Store:     st,
		NotifyURL: notifyURL,
		Logger:    logger,
		client:    &http.Client{Timeout: timeout},
	}
}

// Record logs one completed search.
func (r *Recorder) Record(entry models.SearchAnalytics) {
	searchesTotal.WithLabelValues(entry.SearchType).Inc()
	searchResults.Observe(float64(entry.ResultCount))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if r.Store != nil {
		if err := r.Store.InsertSearchAnalytics(ctx, entry); err != nil {
			r.Logger.Printf("persist analytics: %v", err)
		}
	}
	r.notify(ctx, entry)
}

// notify POSTs the entry to the configured webhook. Failures are logged
// and never retried.
func (r *Recorder) notify(ctx context.Context, entry models.SearchAnalytics) {
	if r.NotifyURL == "" {
		return
	}
	body, err := json.Marshal(entry)
	if err != nil {
		r.Logger.Printf("notify marshal: %v", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.NotifyURL, bytes.NewReader(body))
	if err != nil {
		r.Logger.Printf("notify request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		r.Logger.Printf("notify: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		r.Logger.Printf("notify: status %d", resp.StatusCode)
	}
}
