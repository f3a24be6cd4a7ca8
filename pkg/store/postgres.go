package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS documents (
	name       TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const (
	selectDocument = `SELECT body FROM documents WHERE name = $1`
	upsertDocument = `INSERT INTO documents (name, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`
)

// PostgresBackend keeps one row per document in the documents table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to dsn and makes sure the documents table exists.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logrus.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}

	if _, err := pool.Exec(ctx, createDocumentsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := p.pool.QueryRow(ctx, selectDocument, name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document %s: %w", name, err)
	}
	return body, nil
}

func (p *PostgresBackend) Save(ctx context.Context, name string, data []byte) error {
	_, err := p.pool.Exec(ctx, upsertDocument, name, string(data))
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", name, err)
	}
	return nil
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresBackend) Close() error {
	p.pool.Close()
	return nil
}
