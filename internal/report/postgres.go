package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/postgres"
)

// PostgresSink stores a run and its records in one transaction. Writing the
// same run twice replaces its records.
type PostgresSink struct {
	client *postgres.Client
}

func NewPostgresSink(client *postgres.Client) *PostgresSink {
	return &PostgresSink{client: client}
}

func (p *PostgresSink) Name() string { return "postgres" }

func (p *PostgresSink) Ping(ctx context.Context) error { return p.client.Ping(ctx) }

func (p *PostgresSink) Close() error { return p.client.Close() }

func (p *PostgresSink) Write(ctx context.Context, r *analysis.Report) error {
	return p.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sax_runs WHERE run_id = $1`, r.RunID); err != nil {
			return fmt.Errorf("clearing run %s: %w", r.RunID, err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sax_runs (run_id, started_at, series_length, window_size, paa_size,
				alphabet_size, strategy, engine, words_retained, distance_calls)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			r.RunID, r.StartedAt, r.SeriesLength, r.WindowSize, r.PAASize,
			r.AlphabetSize, r.Strategy, r.Engine, r.WordsRetained, r.Search.DistanceCalls,
		)
		if err != nil {
			return fmt.Errorf("inserting run %s: %w", r.RunID, err)
		}
		for _, d := range r.Discords {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO sax_discords (run_id, rank, position, nn_distance, length, word)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				r.RunID, d.Rank, d.Position, d.NNDistance, d.Length, string(d.Word),
			)
			if err != nil {
				return fmt.Errorf("inserting discord %d: %w", d.Rank, err)
			}
		}
		for _, m := range r.Motifs {
			occurrences := make([]int64, len(m.Occurrences))
			for i, o := range m.Occurrences {
				occurrences[i] = int64(o)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO sax_motifs (run_id, position, word, frequency, occurrences)
				VALUES ($1, $2, $3, $4, $5)`,
				r.RunID, m.Position, string(m.Word), m.Frequency(), pq.Array(occurrences),
			)
			if err != nil {
				return fmt.Errorf("inserting motif at %d: %w", m.Position, err)
			}
		}
		return nil
	})
}
