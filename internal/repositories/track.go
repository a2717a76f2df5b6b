package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/shared"
)

// TrackFilter narrows a listing. Empty or sentinel values do not constrain.
type TrackFilter struct {
	Genre  string
	Artist string
	Limit  int
}

// TrackRepository stores catalog rows.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// ReplaceAll swaps the whole catalog for tracks and records its column list, atomically.
func (r *TrackRepository) ReplaceAll(ctx context.Context, tracks []models.CatalogTrack, columns []string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tracks"); err != nil {
			return fmt.Errorf("failed to clear tracks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_columns"); err != nil {
			return fmt.Errorf("failed to clear columns: %w", err)
		}

		insert, err := tx.PrepareContext(ctx, `
			INSERT INTO tracks (sequence, track_name, artist, genre, popularity, energy, danceability, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer insert.Close()

		for _, t := range tracks {
			_, err := insert.ExecContext(ctx,
				t.Sequence,
				optional(t.TrackName),
				optional(t.Artist),
				optional(t.Genre),
				optional(t.Popularity),
				optional(t.Energy),
				optional(t.Danceability),
				optional(t.DurationMs),
			)
			if err != nil {
				return fmt.Errorf("failed to insert track %d: %w", t.Sequence, err)
			}
		}

		for i, name := range columns {
			if _, err := tx.ExecContext(ctx, "INSERT INTO catalog_columns (position, name) VALUES (?, ?)", i, name); err != nil {
				return fmt.Errorf("failed to insert column %s: %w", name, err)
			}
		}
		return nil
	})
}

// List returns rows matching f in catalog order. Genre and artist compare case-insensitively.
func (r *TrackRepository) List(ctx context.Context, f TrackFilter) ([]models.CatalogTrack, error) {
	query := `
		SELECT sequence, track_name, artist, genre, popularity, energy, danceability, duration_ms
		FROM tracks
		WHERE 1 = 1
	`
	args := []any{}

	if !models.IsSentinel(f.Genre) {
		query += " AND fold(COALESCE(genre, '')) = fold(?)"
		args = append(args, f.Genre)
	}
	if !models.IsSentinel(f.Artist) {
		query += " AND fold(COALESCE(artist, '')) = fold(?)"
		args = append(args, f.Artist)
	}

	query += " ORDER BY sequence ASC LIMIT ?"
	args = append(args, sqlLimit(f.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.CatalogTrack{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

// TopBy counts rows per value of field, highest count first, ties broken by first appearance.
func (r *TrackRepository) TopBy(ctx context.Context, field models.Field, limit int) (models.Aggregate, error) {
	var col string
	switch field {
	case models.FieldArtist, models.FieldGenre, models.FieldTrackName:
		col = string(field)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownColumn, field)
	}

	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*) AS n, MIN(sequence) AS first_seen
		FROM tracks
		WHERE %[1]s IS NOT NULL
		GROUP BY %[1]s
		ORDER BY n DESC, first_seen ASC
		LIMIT ?
	`, col)

	rows, err := r.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to rank %s: %w", col, err)
	}
	defer rows.Close()

	agg := models.Aggregate{}
	for rows.Next() {
		var (
			label string
			n     int
			first int
		)
		if err := rows.Scan(&label, &n, &first); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", col, err)
		}
		agg = append(agg, models.AggregateBucket{Label: label, Count: float64(n)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return agg, nil
}

// Count returns the number of catalog rows.
func (r *TrackRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "tracks")
}

// Columns returns the column list recorded by the last import.
func (r *TrackRepository) Columns(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM catalog_columns ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	cols := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func scanTrack(rows *sql.Rows) (models.CatalogTrack, error) {
	var (
		sequence                                   int
		trackName, artist, genre                   sql.NullString
		popularity, energy, danceability, duration sql.NullFloat64
	)

	err := rows.Scan(&sequence, &trackName, &artist, &genre, &popularity, &energy, &danceability, &duration)
	if err != nil {
		return models.CatalogTrack{}, fmt.Errorf("failed to scan track: %w", err)
	}

	return models.CatalogTrack{
		Sequence:     sequence,
		TrackName:    nullString(trackName),
		Artist:       nullString(artist),
		Genre:        nullString(genre),
		Popularity:   nullFloat(popularity),
		Energy:       nullFloat(energy),
		Danceability: nullFloat(danceability),
		DurationMs:   nullFloat(duration),
	}, nil
}
