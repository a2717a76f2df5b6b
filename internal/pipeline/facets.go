package pipeline

import (
	"sort"

	"github.com/desertthunder/songdash/internal/models"
)

// FacetValues returns the selectable values of field: the sentinel, then every distinct non-empty value
// in byte-wise order. Values equal to the sentinel are not repeated.
func FacetValues(records []models.TrackRecord, field models.Field) models.FacetSet {
	seen := make(map[string]struct{})
	values := []string{}

	for _, r := range records {
		v := field.Value(r)
		if v == nil || *v == "" || *v == models.Sentinel {
			continue
		}
		if _, ok := seen[*v]; ok {
			continue
		}
		seen[*v] = struct{}{}
		values = append(values, *v)
	}

	sort.Strings(values)

	return models.FacetSet{
		Field:  field,
		Values: append([]string{models.Sentinel}, values...),
	}
}
