package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/shared"
)

// ImportRepository records catalog imports.
type ImportRepository struct {
	db *sql.DB
}

// NewImportRepository creates a new ImportRepository with the given database connection
func NewImportRepository(db *sql.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// Create inserts rec, assigning its ID and timestamp when unset.
func (r *ImportRepository) Create(ctx context.Context, rec *models.ImportRecord) error {
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now().UTC()
	}
	if rec.Source == "" {
		return fmt.Errorf("%w: import source is required", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO imports (id, source, encoding, duration_unit, popularity_source, rows, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Source,
		rec.Encoding,
		rec.DurationUnit,
		rec.PopularitySource,
		rec.Rows,
		rec.ImportedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert import: %w", err)
	}
	return nil
}

// Latest returns the most recent import, or nil when the catalog was never imported.
func (r *ImportRepository) Latest(ctx context.Context) (*models.ImportRecord, error) {
	recs, err := r.list(ctx, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// List returns imports newest first.
func (r *ImportRepository) List(ctx context.Context) ([]models.ImportRecord, error) {
	return r.list(ctx, 0)
}

func (r *ImportRepository) list(ctx context.Context, limit int) ([]models.ImportRecord, error) {
	query := `
		SELECT id, source, encoding, duration_unit, popularity_source, rows, imported_at
		FROM imports
		ORDER BY imported_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer rows.Close()

	recs := []models.ImportRecord{}
	for rows.Next() {
		var rec models.ImportRecord
		err := rows.Scan(&rec.ID, &rec.Source, &rec.Encoding, &rec.DurationUnit, &rec.PopularitySource, &rec.Rows, &rec.ImportedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return recs, nil
}
