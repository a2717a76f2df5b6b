package services

import (
	"context"

	"github.com/desertthunder/songdash/internal/models"
)

// Catalog is the read side of the catalog API the dashboards are built from.
type Catalog interface {
	// TopArtists returns the catalog's artist counts in rank order.
	TopArtists(ctx context.Context, limit int) (models.Aggregate, error)

	// TopGenres returns the catalog's genre counts in rank order.
	TopGenres(ctx context.Context, limit int) (models.Aggregate, error)

	// Tracks returns normalized track records matching q.
	Tracks(ctx context.Context, q TrackQuery) ([]models.TrackRecord, error)
}

// TrackQuery filters a tracks request. Empty or sentinel values are omitted.
type TrackQuery struct {
	Genre  string
	Artist string
	Limit  int
}

// Health is the catalog API's health payload.
type Health struct {
	Status  string   `json:"status"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}
