package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/citycal/citycal/pkg/event"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the collection as one jsonb row of the kv_store table.
type PostgresStore struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgresStore(pool *pgxpool.Pool, key string) *PostgresStore {
	return &PostgresStore{pool: pool, key: key}
}

func (s *PostgresStore) Backend() Backend {
	return BackendPostgres
}

func (s *PostgresStore) Load(ctx context.Context) ([]event.Event, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []event.Event{}, nil
		}
		return nil, fmt.Errorf("failed to select %s from kv_store: %w", s.key, err)
	}
	return decodeEvents(data)
}

func (s *PostgresStore) Save(ctx context.Context, events []event.Event) error {
	if events == nil {
		events = []event.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	query := `INSERT INTO kv_store (key, value, updated_at)
			  VALUES ($1, $2::jsonb, now())
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := s.pool.Exec(ctx, query, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to upsert %s into kv_store: %w", s.key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
