package pipeline

import (
	"strings"

	"github.com/desertthunder/songdash/internal/models"
)

// ApplyFilter returns the records matching every active dimension of sel, in their original order.
//
// The result is always a new, non-nil slice.
func ApplyFilter(records []models.TrackRecord, sel models.FilterSelection) []models.TrackRecord {
	out := make([]models.TrackRecord, 0, len(records))
	for _, r := range records {
		if Matches(r, sel) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r satisfies sel. Comparison is case-insensitive; an absent value never
// matches a concrete selection.
func Matches(r models.TrackRecord, sel models.FilterSelection) bool {
	return matchField(r.Genre, sel.Genre) && matchField(r.Artist, sel.Artist)
}

func matchField(v *string, want string) bool {
	if models.IsSentinel(want) {
		return true
	}
	if v == nil {
		return false
	}
	return strings.EqualFold(*v, want)
}
