package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

// SQLiteStore keeps catalog pages in the local catalog_entries table so the
// last-known-good copy survives restarts of a single instance.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (*domain.Collection, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM catalog_entries WHERE cache_key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load catalog: %w", err)
	}

	var col domain.Collection
	if err := json.Unmarshal(raw, &col); err != nil {
		return nil, fmt.Errorf("decode catalog entry: %w", err)
	}
	return &col, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, c *domain.Collection) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode catalog entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO catalog_entries (cache_key, payload, fetched_at)
        VALUES (?, ?, ?)
        ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, raw, c.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("sqlite save catalog: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM catalog_entries`); err != nil {
		return fmt.Errorf("sqlite clear catalog: %w", err)
	}
	return nil
}
