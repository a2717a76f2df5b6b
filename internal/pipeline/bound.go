package pipeline

import "github.com/desertthunder/songdash/internal/models"

// Bound keeps the first limit records of filtered. A negative limit is treated as zero.
//
// Shown shares filtered's backing array but has its capacity clipped, so appending to it never
// overwrites the source.
func Bound(filtered []models.TrackRecord, limit int) models.FilteredView {
	if limit < 0 {
		limit = 0
	}

	displayed := min(len(filtered), limit)
	shown := filtered[:displayed:displayed]
	if shown == nil {
		shown = []models.TrackRecord{}
	}

	return models.FilteredView{
		Shown:        shown,
		TotalMatched: len(filtered),
		Displayed:    displayed,
		Cap:          limit,
	}
}
