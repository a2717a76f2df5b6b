package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/encoding/charmap"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/shared"
)

// Source encodings
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// Duration units detected for the duration_ms column
const (
	DurationNone         = "none"
	DurationString       = "string"
	DurationSeconds      = "seconds"
	DurationMilliseconds = "milliseconds"
)

// Catalog is the result of reading one CSV.
type Catalog struct {
	// Columns lists the normalized source columns followed by any derived columns the source lacked.
	Columns          []string
	Tracks           []models.CatalogTrack
	Encoding         string
	DurationUnit     string
	PopularitySource string
}

// table is the decoded CSV with normalized headers and blank rows removed.
type table struct {
	cols []string
	rows [][]string
}

func (t table) cell(row, col int) string {
	if col < 0 || col >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][col]
}

// text returns the cell or nil when it is empty.
func (t table) text(row, col int) *string {
	if v := t.cell(row, col); v != "" {
		return &v
	}
	return nil
}

func (t table) numbers(col int) []*float64 {
	out := make([]*float64, len(t.rows))
	if col < 0 {
		return out
	}
	for i := range t.rows {
		if v, ok := ParseNumber(t.cell(i, col)); ok {
			out[i] = &v
		}
	}
	return out
}

// Read parses a catalog CSV.
func Read(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	text, encoding, err := decode(data)
	if err != nil {
		return nil, err
	}

	tbl, err := parseTable(text)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{
		Columns:  slices.Clone(tbl.cols),
		Tracks:   make([]models.CatalogTrack, len(tbl.rows)),
		Encoding: encoding,
	}
	derived := func(name string) {
		if !slices.Contains(cat.Columns, name) {
			cat.Columns = append(cat.Columns, name)
		}
	}

	cols := Discover(tbl.cols)
	for i := range tbl.rows {
		cat.Tracks[i] = models.CatalogTrack{
			Sequence:  i,
			TrackName: tbl.text(i, cols.Track),
		}
	}
	if cols.Track >= 0 {
		derived("track_name")
	}

	if cols.Artist >= 0 {
		for i := range tbl.rows {
			if a := FirstArtist(tbl.cell(i, cols.Artist)); a != "" {
				cat.Tracks[i].Artist = &a
			}
		}
		derived("artist")
	}

	if cols.Genre >= 0 {
		for i := range tbl.rows {
			cat.Tracks[i].Genre = tbl.text(i, cols.Genre)
		}
		derived("genre")
	}

	popularity, source := derivePopularity(tbl, cols)
	cat.PopularitySource = source
	if popularity != nil {
		for i, v := range popularity {
			cat.Tracks[i].Popularity = v
		}
		derived("popularity")
	}

	for i, v := range tbl.numbers(cols.Energy) {
		cat.Tracks[i].Energy = v
	}
	for i, v := range tbl.numbers(cols.Danceability) {
		cat.Tracks[i].Danceability = v
	}

	durations, unit := deriveDuration(tbl, cols)
	cat.DurationUnit = unit
	if durations != nil {
		for i, v := range durations {
			cat.Tracks[i].DurationMs = v
		}
		derived("duration_ms")
	}

	return cat, nil
}

func decode(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), EncodingUTF8, nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("%w: cannot decode as %s: %w", shared.ErrInvalidCSV, EncodingLatin1, err)
	}
	return string(out), EncodingLatin1, nil
}

func parseTable(text string) (table, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return table{}, fmt.Errorf("%w: %w", shared.ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return table{}, fmt.Errorf("%w: no header row", shared.ErrInvalidCSV)
	}

	tbl := table{cols: make([]string, len(records[0]))}
	for i, name := range records[0] {
		tbl.cols[i] = NormalizeColumn(name)
	}

	for _, row := range records[1:] {
		blank := !slices.ContainsFunc(row, func(v string) bool { return strings.TrimSpace(v) != "" })
		if !blank {
			tbl.rows = append(tbl.rows, row)
		}
	}
	return tbl, nil
}

// derivePopularity picks the first available source in priority order: popularity, views, streams,
// rank, score. Views and streams are min-max scaled to 0..100 and rank is inverted onto the same range.
func derivePopularity(tbl table, cols Columns) ([]*float64, string) {
	switch {
	case cols.Popularity >= 0:
		return tbl.numbers(cols.Popularity), tbl.cols[cols.Popularity]
	case cols.Views >= 0:
		return scaled(tbl.numbers(cols.Views), false), "views:" + tbl.cols[cols.Views]
	case cols.Streams >= 0:
		return scaled(tbl.numbers(cols.Streams), false), "streams:" + tbl.cols[cols.Streams]
	case cols.Rank >= 0:
		return scaled(tbl.numbers(cols.Rank), true), "rank:" + tbl.cols[cols.Rank]
	case cols.Score >= 0:
		return tbl.numbers(cols.Score), tbl.cols[cols.Score]
	default:
		return nil, "none"
	}
}

func scaled(values []*float64, invert bool) []*float64 {
	vals := present(values)
	if len(vals) == 0 {
		return nil
	}

	lo, _ := stats.Min(vals)
	hi, _ := stats.Max(vals)

	out := make([]*float64, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		var p float64
		if invert {
			p = (hi - *v) / (hi - lo + 1e-9) * 100
		} else {
			rng := hi - lo
			if rng == 0 {
				rng = 1
			}
			p = (*v - lo) / rng * 100
		}
		p, _ = stats.Round(p, 2)
		out[i] = &p
	}
	return out
}

// deriveDuration fills duration_ms from a duration string column, or from a numeric duration column whose
// median decides between seconds (<= 600) and milliseconds. A duration column with non-numeric cells is
// parsed cell by cell.
func deriveDuration(tbl table, cols Columns) ([]*float64, string) {
	col, unit := cols.DurationString, DurationString
	if col < 0 {
		col = cols.Duration
		unit = ""
	}
	if col < 0 {
		return nil, DurationNone
	}

	parsed := make([]*float64, len(tbl.rows))
	numeric := true
	for i := range tbl.rows {
		cell := strings.TrimSpace(tbl.cell(i, col))
		if v, ok := ParseDuration(cell); ok {
			parsed[i] = &v
		}
		if _, err := strconv.ParseFloat(cell, 64); cell != "" && err != nil {
			numeric = false
		}
	}
	if unit == DurationString || !numeric {
		return parsed, DurationString
	}

	median, err := stats.Median(present(parsed))
	if err != nil || median > 600 {
		return parsed, DurationMilliseconds
	}
	for _, v := range parsed {
		if v != nil {
			*v *= 1000
		}
	}
	return parsed, DurationSeconds
}

func present(values []*float64) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}
