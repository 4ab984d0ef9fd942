package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/clipsearch/clipsearch/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Store{DB: db}, mock
}

func TestGetTenantByDomain(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, domain, name, created_at FROM tenants WHERE domain=\$1`).
		WithArgs("clips.example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "domain", "name", "created_at"}).
			AddRow("ten-1", "clips.example.com", "Clips Inc", created))

	tenant, err := s.GetTenantByDomain(context.Background(), " Clips.Example.COM ")
	if err != nil {
		t.Fatalf("GetTenantByDomain: %v", err)
	}
	if tenant.ID != "ten-1" || tenant.Domain != "clips.example.com" {
		t.Fatalf("unexpected tenant %+v", tenant)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetTenantByDomainNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT id, domain, name, created_at FROM tenants WHERE domain=\$1`).
		WithArgs("missing.example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "domain", "name", "created_at"}))

	_, err := s.GetTenantByDomain(context.Background(), "missing.example.com")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetVideoQuality(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE videos SET is_quality=\$2, updated_at=now\(\) WHERE id=\$1`).
		WithArgs("vid-1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.SetVideoQuality(context.Background(), "vid-1", false); err != nil {
		t.Fatalf("SetVideoQuality: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetVideoQualityMissingVideo(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE videos SET is_quality=\$2`).
		WithArgs("vid-unknown", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetVideoQuality(context.Background(), "vid-unknown", true)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertSearchAnalytics(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO search_analytics`).
		WithArgs("ten-1", sqlmock.AnyArg(), "solar panels", "hybrid", 12, "10.1.2.3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.InsertSearchAnalytics(context.Background(), models.SearchAnalytics{
		TenantID:    "ten-1",
		Query:       "solar panels",
		SearchType:  "hybrid",
		ResultCount: 12,
		CallerIP:    "10.1.2.3",
	})
	if err != nil {
		t.Fatalf("InsertSearchAnalytics: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVectorLiteralRoundTrip(t *testing.T) {
	t.Parallel()
	in := []float32{0.25, -1.5, 3}
	lit, err := encodeVectorLiteral(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if lit != "[0.25,-1.5,3]" {
		t.Fatalf("literal = %q", lit)
	}
	out, err := decodeVectorLiteral(lit)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %v != %v", out, in)
	}
}

func TestEncodeVectorLiteralEmpty(t *testing.T) {
	t.Parallel()
	if _, err := encodeVectorLiteral(nil); err == nil {
		t.Fatalf("expected error for empty vector")
	}
}
