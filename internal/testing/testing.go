// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/songdash/internal/models"
)

// Record builds a [models.TrackRecord]; empty strings become absent fields.
func Record(name, artist, genre string) models.TrackRecord {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return models.Ptr(s)
	}
	return models.TrackRecord{TrackName: opt(name), Artist: opt(artist), Genre: opt(genre)}
}

// ScenarioRecords is the three-record catalog: X/Rock, Y/Pop, X/Rock.
func ScenarioRecords() []models.TrackRecord {
	return []models.TrackRecord{
		Record("a", "X", "Rock"),
		Record("b", "Y", "Pop"),
		Record("c", "X", "Rock"),
	}
}

// SampleRecords returns n fully populated records cycling through four artists and three genres.
func SampleRecords(n int) []models.TrackRecord {
	records := make([]models.TrackRecord, n)
	for i := range n {
		r := Record(fmt.Sprintf("Track %d", i), fmt.Sprintf("Artist %d", i%4), fmt.Sprintf("Genre %d", i%3))
		r.Popularity = models.Ptr(float64(i % 101))
		r.DurationMs = models.Ptr(float64(180000 + i*1000))
		records[i] = r
	}
	return records
}

// SampleSnapshot wraps records with aggregates counted from them.
func SampleSnapshot(id string, records []models.TrackRecord) *models.Snapshot {
	count := func(f models.Field) models.Aggregate {
		agg := models.Aggregate{}
		idx := map[string]int{}
		for _, r := range records {
			v := f.Value(r)
			if v == nil || *v == "" {
				continue
			}
			if i, ok := idx[*v]; ok {
				agg[i].Count++
				continue
			}
			idx[*v] = len(agg)
			agg = append(agg, models.AggregateBucket{Label: *v, Count: 1})
		}
		return agg
	}
	return &models.Snapshot{
		ID:         id,
		FetchedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		TopArtists: count(models.FieldArtist),
		TopGenres:  count(models.FieldGenre),
		Tracks:     records,
	}
}

// MockFetcher is a test double for session.Fetcher.
//
// When Release is non-nil, Fetch blocks until it is closed or ctx is done.
type MockFetcher struct {
	Snapshot *models.Snapshot
	Err      error
	Release  chan struct{}

	mu    sync.Mutex
	calls int
}

func (m *MockFetcher) Fetch(ctx context.Context) (*models.Snapshot, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Release != nil {
		select {
		case <-m.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Snapshot, m.Err
}

// Calls reports how many times Fetch was invoked.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MustWriteFile writes content to name inside dir and returns the full path.
func MustWriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
