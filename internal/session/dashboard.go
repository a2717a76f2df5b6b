package session

import (
	"time"

	"github.com/desertthunder/songdash/internal/models"
)

// Dashboard is everything a presentation layer needs for one render.
//
// TopArtists and TopGenres rank the catalog's pre-aggregated counts. The Local variants rank counts taken
// from the snapshot's own records.
type Dashboard struct {
	SnapshotID      string                   `json:"snapshot_id"`
	FetchedAt       time.Time                `json:"fetched_at"`
	TopArtists      []models.AggregateBucket `json:"top_artists"`
	TopGenres       []models.AggregateBucket `json:"top_genres"`
	LocalTopArtists []models.AggregateBucket `json:"local_top_artists"`
	LocalTopGenres  []models.AggregateBucket `json:"local_top_genres"`
	Genres          models.FacetSet          `json:"genres"`
	Artists         models.FacetSet          `json:"artists"`
	Selection       models.FilterSelection   `json:"selection"`
	View            models.FilteredView      `json:"view"`
}

// Facet returns the facet set for f.
func (d *Dashboard) Facet(f models.Field) models.FacetSet {
	if f == models.FieldArtist {
		return d.Artists
	}
	return d.Genres
}
