package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/clipsearch/clipsearch/models"
)

// Store wraps the Postgres connection. All methods take a context and
// return wrapped errors; missing rows map to models.ErrNotFound.
type Store struct {
	DB *sql.DB
}

// NewWithDSN opens and pings a Postgres connection.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// BuildDSN constructs a Postgres DSN from discrete settings. url wins when
// set.
func BuildDSN(url, host, port, user, password, dbname, sslmode string) (string, error) {
	if url != "" {
		return url, nil
	}
	if host == "" || dbname == "" {
		return "", fmt.Errorf("postgres configuration incomplete: host/dbname required")
	}
	if port == "" {
		port = "5432"
	}
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, dbname, sslmode), nil
}

// CreateTenant inserts a tenant and returns it with generated fields.
func (s *Store) CreateTenant(ctx context.Context, domain, name string) (models.Tenant, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return models.Tenant{}, fmt.Errorf("tenant domain required")
	}
	var t models.Tenant
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO tenants (domain, name)
VALUES ($1,$2)
RETURNING id, domain, name, created_at
`, domain, name).Scan(&t.ID, &t.Domain, &t.Name, &t.CreatedAt)
	if err != nil {
		return models.Tenant{}, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

// ListTenants returns every tenant, oldest first.
func (s *Store) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, domain, name, created_at FROM tenants ORDER BY created_at ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	var out []models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Domain, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTenantByDomain resolves a tenant from a request host.
func (s *Store) GetTenantByDomain(ctx context.Context, domain string) (models.Tenant, error) {
	var t models.Tenant
	err := s.DB.QueryRowContext(ctx, `
SELECT id, domain, name, created_at FROM tenants WHERE domain=$1
`, strings.ToLower(strings.TrimSpace(domain))).Scan(&t.ID, &t.Domain, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tenant{}, models.ErrNotFound
	}
	if err != nil {
		return models.Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// CreateAdmin stores an admin login with a bcrypt password hash.
func (s *Store) CreateAdmin(ctx context.Context, tenantID, email, passwordHash string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO admins (tenant_id, email, password_hash)
VALUES ($1,$2,$3)
`, tenantID, strings.ToLower(email), passwordHash)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// GetAdminByEmail returns an admin's id and password hash for login.
func (s *Store) GetAdminByEmail(ctx context.Context, tenantID, email string) (string, string, error) {
	var id, hash string
	err := s.DB.QueryRowContext(ctx, `
SELECT id, password_hash FROM admins WHERE tenant_id=$1 AND email=$2
`, tenantID, strings.ToLower(email)).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", models.ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("get admin: %w", err)
	}
	return id, hash, nil
}
