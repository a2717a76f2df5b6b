// package models defines the data model for the song dashboard
package models

import "time"

// Sentinel is the facet value meaning "no constraint on this dimension".
const Sentinel = "Todos"

// Field names a categorical column of a [TrackRecord] that can be faceted, filtered or counted.
type Field string

const (
	FieldTrackName Field = "track_name"
	FieldArtist    Field = "artist"
	FieldGenre     Field = "genre"
)

// Value returns the field's value on r, or nil when absent or when f is not a known field.
func (f Field) Value(r TrackRecord) *string {
	switch f {
	case FieldTrackName:
		return r.TrackName
	case FieldArtist:
		return r.Artist
	case FieldGenre:
		return r.Genre
	default:
		return nil
	}
}

// TrackRecord is one catalog entry. Every field is optional; nil means absent.
type TrackRecord struct {
	TrackName  *string  `json:"track_name"`
	Artist     *string  `json:"artist"`
	Genre      *string  `json:"genre"`
	Popularity *float64 `json:"popularity"`
	DurationMs *float64 `json:"duration_ms"`
}

// Snapshot is the immutable result of one fetch from the catalog API.
type Snapshot struct {
	ID         string        `json:"id"`
	FetchedAt  time.Time     `json:"fetched_at"`
	TopArtists Aggregate     `json:"top_artists"`
	TopGenres  Aggregate     `json:"top_genres"`
	Tracks     []TrackRecord `json:"tracks"`
}

// CatalogTrack is a persisted catalog row.
//
// Sequence is the row's position in the imported CSV and is used for stable ordering and ranking ties.
type CatalogTrack struct {
	Sequence     int      `json:"-"`
	TrackName    *string  `json:"track_name"`
	Artist       *string  `json:"artist"`
	Genre        *string  `json:"genre"`
	Popularity   *float64 `json:"popularity"`
	Energy       *float64 `json:"energy"`
	Danceability *float64 `json:"danceability"`
	DurationMs   *float64 `json:"duration_ms"`
}

// Record projects the row onto the fields the dashboard uses.
func (c CatalogTrack) Record() TrackRecord {
	return TrackRecord{
		TrackName:  c.TrackName,
		Artist:     c.Artist,
		Genre:      c.Genre,
		Popularity: c.Popularity,
		DurationMs: c.DurationMs,
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Correlation is a symmetric matrix of Pearson coefficients keyed by column name.
// A nil coefficient means it is undefined for that pair.
type Correlation map[string]map[string]*float64

// ImportRecord describes one catalog import.
type ImportRecord struct {
	ID               string    `json:"id"`
	Source           string    `json:"source"`
	Encoding         string    `json:"encoding"`
	DurationUnit     string    `json:"duration_unit"`
	PopularitySource string    `json:"popularity_source"`
	Rows             int       `json:"rows"`
	ImportedAt       time.Time `json:"imported_at"`
}
