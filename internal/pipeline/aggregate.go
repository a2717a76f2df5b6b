package pipeline

import (
	"cmp"
	"math"
	"slices"

	"github.com/desertthunder/songdash/internal/models"
)

// TopN ranks agg by descending metric and keeps at most n buckets.
//
// The sort is stable, so equal metrics stay in the aggregate's order. Buckets with a negative or NaN
// metric are skipped. n <= 0 or an empty aggregate yields an empty, non-nil slice.
func TopN(agg models.Aggregate, n int) []models.AggregateBucket {
	if n <= 0 || len(agg) == 0 {
		return []models.AggregateBucket{}
	}

	ranked := make([]models.AggregateBucket, 0, len(agg))
	for _, b := range agg {
		if b.Count < 0 || math.IsNaN(b.Count) {
			continue
		}
		ranked = append(ranked, b)
	}

	slices.SortStableFunc(ranked, func(a, b models.AggregateBucket) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if len(ranked) > n {
		ranked = ranked[:n:n]
	}
	return ranked
}

// CountBy counts occurrences of each non-empty value of field across records.
//
// Labels appear in first-seen order, so feeding the result to [TopN] breaks ties by first appearance.
func CountBy(records []models.TrackRecord, field models.Field) models.Aggregate {
	out := models.Aggregate{}
	index := make(map[string]int)

	for _, r := range records {
		v := field.Value(r)
		if v == nil || *v == "" {
			continue
		}
		if i, ok := index[*v]; ok {
			out[i].Count++
			continue
		}
		index[*v] = len(out)
		out = append(out, models.AggregateBucket{Label: *v, Count: 1})
	}
	return out
}
