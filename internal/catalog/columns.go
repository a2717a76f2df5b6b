package catalog

import (
	"regexp"
	"slices"
	"strings"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	invalidRun = regexp.MustCompile(`[^a-z0-9_]+`)
	underRun   = regexp.MustCompile(`_+`)
)

// NormalizeColumn lower-cases name and reduces it to [a-z0-9_], collapsing and trimming underscores.
func NormalizeColumn(name string) string {
	c := strings.ToLower(strings.TrimSpace(name))
	c = spaceRun.ReplaceAllString(c, "_")
	c = invalidRun.ReplaceAllString(c, "_")
	c = underRun.ReplaceAllString(c, "_")
	return strings.Trim(c, "_")
}

// Column search patterns, tried in order. Each pattern is matched against every column before the next
// pattern is tried.
var (
	trackPatterns      = compile(`\btitle\b`, `\btrack\b`, `\bsong\b`, `^name$`)
	artistPatterns     = compile(`\bartist`, `^channel$`)
	genrePatterns      = compile(`\bgenre`, `categories?`, `style`)
	popularityPatterns = compile(`\bpopularity\b`, `popularity_score`)
	viewsPatterns      = compile(`\bview_count\b`, `\bviews?\b`)
	streamsPatterns    = compile(`\bstreams?\b`, `\blistens?\b`, `\bplays?\b`)
	rankPatterns       = compile(`\brank\b`)
	scorePatterns      = compile(`\bscore\b`)
	durStringPatterns  = compile(`duration_string`)
	durationPatterns   = compile(`\bduration\b`, `length`, `duration_ms`, `length_ms`, `\btime\b`)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// findColumn returns the index of the first column matched by the earliest pattern, or -1.
func findColumn(cols []string, patterns []*regexp.Regexp) int {
	for _, rx := range patterns {
		if i := slices.IndexFunc(cols, rx.MatchString); i >= 0 {
			return i
		}
	}
	return -1
}

// Columns holds the discovered source column indexes; -1 means not found.
type Columns struct {
	Track          int
	Artist         int
	Genre          int
	Popularity     int
	Views          int
	Streams        int
	Rank           int
	Score          int
	Energy         int
	Danceability   int
	DurationString int
	Duration       int
}

// Discover locates the columns of interest among normalized header names.
//
// An existing track_name column wins over pattern discovery and the first column is the track fallback.
func Discover(cols []string) Columns {
	c := Columns{
		Track:          slices.Index(cols, "track_name"),
		Artist:         findColumn(cols, artistPatterns),
		Genre:          findColumn(cols, genrePatterns),
		Popularity:     findColumn(cols, popularityPatterns),
		Views:          findColumn(cols, viewsPatterns),
		Streams:        findColumn(cols, streamsPatterns),
		Rank:           findColumn(cols, rankPatterns),
		Score:          findColumn(cols, scorePatterns),
		Energy:         slices.Index(cols, "energy"),
		Danceability:   slices.Index(cols, "danceability"),
		DurationString: findColumn(cols, durStringPatterns),
		Duration:       findColumn(cols, durationPatterns),
	}
	if c.Track < 0 {
		c.Track = findColumn(cols, trackPatterns)
	}
	if c.Track < 0 && len(cols) > 0 {
		c.Track = 0
	}
	return c
}
