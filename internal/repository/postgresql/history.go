// Package postgresql persists a history row for every finished job. The
// billing side reads this table to charge credits per completed job; the
// live job state itself never touches the database.
package postgresql

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"muxminus-backend/internal/entity"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// RecordTerminal inserts the terminal snapshot. Implements queue.Sink; a
// failed insert is logged and dropped, it must not affect the job.
func (r *HistoryRepository) RecordTerminal(ctx context.Context, job entity.Job) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	const q = `
INSERT INTO job_history (job_id, job_type, status, error_message, output_count, created_at, started_at, completed_at, processing_seconds)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
ON CONFLICT (job_id) DO NOTHING;
`
	_, err := r.pool.Exec(ctx, q,
		job.ID,
		string(job.Kind),
		string(job.Status),
		job.ErrorMsg,
		len(job.OutputFiles),
		job.CreatedAt,
		nullTime(job.StartedAt),
		nullTime(job.CompletedAt),
		job.ProcessingTime,
	)
	if err != nil {
		log.Printf("[history] job_id=%s insert error=%v", job.ID, err)
	}
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
