// Package postgres wraps a lib/pq connection pool with a transaction helper
// and the schema the report sink writes to.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
)

// Schema creates the report tables when they are missing.
const Schema = `
CREATE TABLE IF NOT EXISTS sax_runs (
	run_id         UUID PRIMARY KEY,
	started_at     TIMESTAMPTZ NOT NULL,
	series_length  INTEGER NOT NULL,
	window_size    INTEGER NOT NULL,
	paa_size       INTEGER NOT NULL,
	alphabet_size  INTEGER NOT NULL,
	strategy       TEXT NOT NULL,
	engine         TEXT NOT NULL,
	words_retained INTEGER NOT NULL,
	distance_calls BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS sax_discords (
	run_id      UUID NOT NULL REFERENCES sax_runs(run_id) ON DELETE CASCADE,
	rank        INTEGER NOT NULL,
	position    INTEGER NOT NULL,
	nn_distance DOUBLE PRECISION NOT NULL,
	length      INTEGER NOT NULL,
	word        TEXT NOT NULL,
	PRIMARY KEY (run_id, rank)
);
CREATE TABLE IF NOT EXISTS sax_motifs (
	run_id      UUID NOT NULL REFERENCES sax_runs(run_id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	word        TEXT NOT NULL,
	frequency   INTEGER NOT NULL,
	occurrences INTEGER[] NOT NULL,
	PRIMARY KEY (run_id, position)
);`

type Client struct {
	DB  *sql.DB
	cfg config.PostgresConfig
}

func New(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db, cfg: cfg}, nil
}

// Migrate applies Schema.
func (c *Client) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func (c *Client) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
