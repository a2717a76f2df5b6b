package catalog

import (
	"github.com/montanaflynn/stats"

	"github.com/desertthunder/songdash/internal/models"
)

// CorrelationColumns are the numeric columns compared by [Correlate].
var CorrelationColumns = []string{"popularity", "energy", "danceability", "duration_ms"}

func numericColumn(t models.CatalogTrack, name string) *float64 {
	switch name {
	case "popularity":
		return t.Popularity
	case "energy":
		return t.Energy
	case "danceability":
		return t.Danceability
	case "duration_ms":
		return t.DurationMs
	}
	return nil
}

// Correlate computes pairwise Pearson coefficients over rows where both values are present, rounded to two
// decimals. Columns without any value are left out. A pair with fewer than two observations or with a
// constant side has a nil coefficient.
func Correlate(tracks []models.CatalogTrack) models.Correlation {
	var use []string
	for _, name := range CorrelationColumns {
		for _, t := range tracks {
			if numericColumn(t, name) != nil {
				use = append(use, name)
				break
			}
		}
	}

	out := models.Correlation{}
	for _, a := range use {
		out[a] = map[string]*float64{}
		for _, b := range use {
			out[a][b] = pearson(tracks, a, b)
		}
	}
	return out
}

func pearson(tracks []models.CatalogTrack, a, b string) *float64 {
	var xs, ys stats.Float64Data
	for _, t := range tracks {
		x, y := numericColumn(t, a), numericColumn(t, b)
		if x != nil && y != nil {
			xs = append(xs, *x)
			ys = append(ys, *y)
		}
	}
	if len(xs) < 2 {
		return nil
	}

	sx, _ := stats.StandardDeviationPopulation(xs)
	sy, _ := stats.StandardDeviationPopulation(ys)
	if sx == 0 || sy == 0 {
		return nil
	}

	r, err := stats.Pearson(xs, ys)
	if err != nil {
		return nil
	}
	r, _ = stats.Round(r, 2)
	return &r
}
