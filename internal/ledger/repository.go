// Package ledger records the per-file outcome of every upload request.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one row of the uploads table.
type Record struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"requestId"`
	Field     string    `json:"field"`
	Filename  string    `json:"filename"`
	ObjectKey string    `json:"objectKey"`
	URL       string    `json:"url,omitempty"`
	SizeBytes int64     `json:"sizeBytes"`
	Status    string    `json:"status"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository handles uploads table operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InsertMany writes records in a single batch.
func (r *Repository) InsertMany(ctx context.Context, records []Record) error {
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO uploads (id, request_id, field, filename, object_key, url, size_bytes, status, error, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			rec.ID, rec.RequestID, rec.Field, rec.Filename, rec.ObjectKey, rec.URL, rec.SizeBytes, rec.Status, rec.Error, rec.CreatedAt,
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert uploads: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, request_id, field, filename, object_key, url, size_bytes, status, error, created_at
		 FROM uploads
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		err := row.Scan(&rec.ID, &rec.RequestID, &rec.Field, &rec.Filename, &rec.ObjectKey,
			&rec.URL, &rec.SizeBytes, &rec.Status, &rec.Error, &rec.CreatedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan uploads: %w", err)
	}
	return records, nil
}
