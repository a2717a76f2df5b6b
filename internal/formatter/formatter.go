// package formatter renders dashboard data for display and exports the filtered view to CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/shared"
)

// Placeholder is shown in place of an absent value.
const Placeholder = "—"

// Format is an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts csv, markdown (or md) and txt (or text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (use csv, markdown or txt)", shared.ErrInvalidArgument, s)
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Text returns *s or the placeholder.
func Text(s *string) string {
	if s == nil {
		return Placeholder
	}
	return *s
}

// Number formats *v without trailing zeros, or returns the placeholder.
func Number(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Minutes converts a duration in milliseconds to minutes rounded to two decimals.
func Minutes(ms float64) float64 {
	return math.Round(ms/60000*100) / 100
}

// Duration formats *ms as minutes, or returns the placeholder.
func Duration(ms *float64) string {
	if ms == nil {
		return Placeholder
	}
	return strconv.FormatFloat(Minutes(*ms), 'f', 2, 64)
}

// Selection describes the active filters, e.g. "genre=Rock, artist=Todos".
func Selection(sel models.FilterSelection) string {
	g, a := sel.Genre, sel.Artist
	if g == "" {
		g = models.Sentinel
	}
	if a == "" {
		a = models.Sentinel
	}
	return fmt.Sprintf("genre=%s, artist=%s", g, a)
}

// Summary reports how much of the match set is displayed.
func Summary(view models.FilteredView) string {
	if view.Truncated() {
		return fmt.Sprintf("Showing %d of %d matching tracks", view.Displayed, view.TotalMatched)
	}
	return fmt.Sprintf("%d matching tracks", view.TotalMatched)
}

var exportHeaders = []string{"Track", "Artist", "Genre", "Popularity", "Duration (min)"}

func row(r models.TrackRecord) []string {
	return []string{Text(r.TrackName), Text(r.Artist), Text(r.Genre), Number(r.Popularity), Duration(r.DurationMs)}
}

// ExportToCSV converts the displayed rows of view to CSV with columns: Track, Artist, Genre, Popularity, Duration (min)
func ExportToCSV(view models.FilteredView) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range view.Shown {
		if err := writer.Write(row(r)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToMarkdown converts view to a Markdown table headed by the selection and summary.
func ExportToMarkdown(view models.FilteredView, sel models.FilterSelection) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Tracks\n\n")
	fmt.Fprintf(&buf, "**Filters**: %s\n\n", Selection(sel))
	fmt.Fprintf(&buf, "**Rows**: %s\n\n", Summary(view))

	if len(view.Shown) == 0 {
		buf.WriteString("_No data_\n")
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "| # | %s |\n", strings.Join(exportHeaders, " | "))
	buf.WriteString("|---|" + strings.Repeat("---|", len(exportHeaders)) + "\n")
	for i, r := range view.Shown {
		cells := row(r)
		for j := range cells {
			cells[j] = escapeCell(cells[j])
		}
		fmt.Fprintf(&buf, "| %d | %s |\n", i+1, strings.Join(cells, " | "))
	}

	return buf.Bytes(), nil
}

// ExportToText converts view to numbered "artist - track" lines.
func ExportToText(view models.FilteredView, sel models.FilterSelection) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Filters: %s\n", Selection(sel))
	fmt.Fprintf(&buf, "%s\n\n", Summary(view))

	if len(view.Shown) == 0 {
		buf.WriteString("No data\n")
		return buf.Bytes(), nil
	}

	for i, r := range view.Shown {
		fmt.Fprintf(&buf, "%d. %s - %s [%s] (%s min, popularity %s)\n",
			i+1, Text(r.Artist), Text(r.TrackName), Text(r.Genre), Duration(r.DurationMs), Number(r.Popularity))
	}

	return buf.Bytes(), nil
}

// Export renders view in format f.
func Export(f Format, view models.FilteredView, sel models.FilterSelection) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(view)
	case FormatMarkdown:
		return ExportToMarkdown(view, sel)
	case FormatText:
		return ExportToText(view, sel)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
}

// WriteExport writes view to path in format f.
//
// Defaults to tracks.{ext} as the filename.
func WriteExport(f Format, view models.FilteredView, sel models.FilterSelection, path string) (string, error) {
	if path == "" {
		path = "tracks." + f.Ext()
	}

	data, err := Export(f, view, sel)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

// Bars renders buckets as horizontal text bars scaled so the largest count spans width cells.
func Bars(buckets []models.AggregateBucket, width int) []string {
	if len(buckets) == 0 {
		return []string{"No data"}
	}
	if width < 1 {
		width = 1
	}

	var peak float64
	labelWidth := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
		labelWidth = max(labelWidth, len([]rune(b.Label)))
	}

	lines := make([]string, 0, len(buckets))
	for _, b := range buckets {
		n := 0
		if peak > 0 {
			n = int(math.Round(b.Count / peak * float64(width)))
		}
		pad := strings.Repeat(" ", labelWidth-len([]rune(b.Label)))
		lines = append(lines, fmt.Sprintf("%s%s %s %s", b.Label, pad, strings.Repeat("█", n), strconv.FormatFloat(b.Count, 'f', -1, 64)))
	}
	return lines
}
