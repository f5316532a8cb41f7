package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists snapshots in a single table, keeping only the latest
// snapshot per document.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	doc_id     TEXT PRIMARY KEY,
	seq        BIGINT NOT NULL,
	payload    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, docID string, seq int64, payload []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO snapshots (doc_id, seq, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (doc_id)
		DO UPDATE SET seq = EXCLUDED.seq, payload = EXCLUDED.payload, updated_at = now()`,
		docID, seq, payload)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", docID, err)
	}
	return nil
}

func (s *PostgresStore) LoadSnapshot(ctx context.Context, docID string) (*Snapshot, error) {
	var snap Snapshot
	err := s.pool.QueryRow(ctx,
		`SELECT doc_id, seq, payload, updated_at FROM snapshots WHERE doc_id = $1`,
		docID).Scan(&snap.DocID, &snap.Seq, &snap.Payload, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot %s: %w", docID, err)
	}
	return &snap, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc_id, seq, updated_at FROM snapshots ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		if err := rows.Scan(&info.DocID, &info.Seq, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
