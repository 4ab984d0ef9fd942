package analytics

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
)

func TestRecordPersistsAndNotifies(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.ExpectExec(`INSERT INTO search_analytics`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	received := make(chan models.SearchAnalytics, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var entry models.SearchAnalytics
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			t.Errorf("decode: %v", err)
		}
		received <- entry
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rec := NewRecorder(&store.Store{DB: db}, srv.URL, 2*time.Second, log.New(io.Discard, "", 0))
	rec.Record(models.SearchAnalytics{TenantID: "ten-1", Query: "q", SearchType: "hybrid", ResultCount: 3})

	select {
	case entry := <-received:
		if entry.Query != "q" || entry.SearchType != "hybrid" {
			t.Fatalf("unexpected notification %+v", entry)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("notification never delivered")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordSurvivesNotifierFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.ExpectExec(`INSERT INTO search_analytics`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Unroutable notify target; Record must still return normally.
	rec := NewRecorder(&store.Store{DB: db}, "http://127.0.0.1:1", 200*time.Millisecond, log.New(io.Discard, "", 0))
	rec.Record(models.SearchAnalytics{TenantID: "ten-1", Query: "q", SearchType: "keyword"})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
