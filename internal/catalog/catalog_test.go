package catalog

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/shared"
)

func TestNormalizeColumn(t *testing.T) {
	tc := []struct {
		in   string
		want string
	}{
		{in: "Track Name", want: "track_name"},
		{in: "  View Count  ", want: "view_count"},
		{in: "Duration (ms)", want: "duration_ms"},
		{in: "__Artist--Name__", want: "artist_name"},
		{in: "Popularity %", want: "popularity"},
		{in: "ÉNERGIE", want: "nergie"},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeColumn(tt.in); got != tt.want {
				t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	t.Run("Pattern Order Beats Column Order", func(t *testing.T) {
		cols := []string{"song_id", "title", "channel", "categories", "view_count", "duration_string"}
		c := Discover(cols)

		if c.Track != 1 {
			t.Errorf("expected title column, got %d", c.Track)
		}
		if c.Artist != 2 {
			t.Errorf("expected channel column, got %d", c.Artist)
		}
		if c.Genre != 3 {
			t.Errorf("expected categories column, got %d", c.Genre)
		}
		if c.Views != 4 || c.Popularity != -1 {
			t.Errorf("expected views only, got views=%d popularity=%d", c.Views, c.Popularity)
		}
		if c.DurationString != 5 {
			t.Errorf("expected duration_string column, got %d", c.DurationString)
		}
	})

	t.Run("Existing track_name Wins", func(t *testing.T) {
		c := Discover([]string{"title", "track_name"})
		if c.Track != 1 {
			t.Errorf("expected track_name column, got %d", c.Track)
		}
	})

	t.Run("First Column Fallback", func(t *testing.T) {
		c := Discover([]string{"id", "label"})
		if c.Track != 0 {
			t.Errorf("expected first column, got %d", c.Track)
		}
		if c.Artist != -1 || c.Genre != -1 || c.Duration != -1 {
			t.Errorf("expected nothing else discovered, got %+v", c)
		}
	})
}

func TestFirstArtist(t *testing.T) {
	tc := []struct {
		in   string
		want string
	}{
		{in: "Lady Gaga, Bruno Mars", want: "Lady Gaga"},
		{in: "ROSÉ & Bruno Mars", want: "ROSÉ"},
		{in: "Kendrick Lamar feat. SZA", want: "Kendrick Lamar"},
		{in: "Artist FT. Guest", want: "Artist"},
		{in: "AC/DC", want: "AC"},
		{in: "  Solo  ", want: "Solo"},
		{in: ", leading", want: ""},
	}

	for _, tt := range tc {
		if got := FirstArtist(tt.in); got != tt.want {
			t.Errorf("FirstArtist(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Run("ParseNumber", func(t *testing.T) {
		tc := []struct {
			in   string
			want float64
			ok   bool
		}{
			{in: "1,234,567", want: 1234567, ok: true},
			{in: "85%", want: 85, ok: true},
			{in: " 0.5 ", want: 0.5, ok: true},
			{in: "", ok: false},
			{in: "n/a", ok: false},
			{in: "NaN", ok: false},
			{in: "Inf", ok: false},
		}
		for _, tt := range tc {
			got, ok := ParseNumber(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		}
	})

	t.Run("ParseDuration", func(t *testing.T) {
		tc := []struct {
			in   string
			want float64
			ok   bool
		}{
			{in: "3:45", want: 225000, ok: true},
			{in: "1:02:03", want: 3723000, ok: true},
			{in: "0:30.5", want: 30500, ok: true},
			{in: "215", want: 215, ok: true},
			{in: "nan", ok: false},
			{in: "", ok: false},
			{in: "1:2:3:4", ok: false},
			{in: "a:30", ok: false},
		}
		for _, tt := range tc {
			got, ok := ParseDuration(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		}
	})
}

func TestRead(t *testing.T) {
	t.Run("Video Export", func(t *testing.T) {
		csv := "Title,Channel,Categories,View Count,Duration String\n" +
			"Die With A Smile,\"Lady Gaga, Bruno Mars\",Music,\"1,000\",4:12\n" +
			",,,,\n" +
			"APT.,ROSÉ & Bruno Mars,Music,3000,2:54\n" +
			"Luther,Kendrick Lamar feat. SZA,Hip-Hop,2000,\n"

		cat, err := Read(strings.NewReader(csv))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cat.Tracks) != 3 {
			t.Fatalf("expected blank row dropped, got %d tracks", len(cat.Tracks))
		}
		if cat.Encoding != EncodingUTF8 {
			t.Errorf("expected utf-8, got %s", cat.Encoding)
		}
		if cat.PopularitySource != "views:view_count" {
			t.Errorf("unexpected popularity source %s", cat.PopularitySource)
		}
		if cat.DurationUnit != DurationString {
			t.Errorf("expected string durations, got %s", cat.DurationUnit)
		}

		wantCols := []string{"title", "channel", "categories", "view_count", "duration_string", "track_name", "artist", "genre", "popularity", "duration_ms"}
		if !slices.Equal(cat.Columns, wantCols) {
			t.Errorf("expected columns %v, got %v", wantCols, cat.Columns)
		}

		first := cat.Tracks[0]
		if *first.TrackName != "Die With A Smile" || *first.Artist != "Lady Gaga" || *first.Genre != "Music" {
			t.Errorf("unexpected first track %+v", first)
		}
		if *first.Popularity != 0 || *cat.Tracks[1].Popularity != 100 || *cat.Tracks[2].Popularity != 50 {
			t.Error("expected views scaled to 0..100")
		}
		if *first.DurationMs != 252000 {
			t.Errorf("expected 252000 ms, got %v", *first.DurationMs)
		}
		if cat.Tracks[2].DurationMs != nil {
			t.Error("expected missing duration to be absent")
		}
		if cat.Tracks[1].Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", cat.Tracks[1].Sequence)
		}
		if first.Energy != nil {
			t.Error("expected no energy column")
		}
	})

	t.Run("Popularity And Seconds", func(t *testing.T) {
		csv := "track_name,artist,genre,popularity,energy,danceability,duration\n" +
			"A,X,Rock,80%,0.9,0.4,200\n" +
			"B,Y,Pop,60,0.5,0.8,240\n" +
			"C,X,Rock,,,,180\n"

		cat, err := Read(strings.NewReader(csv))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cat.PopularitySource != "popularity" {
			t.Errorf("unexpected popularity source %s", cat.PopularitySource)
		}
		if cat.DurationUnit != DurationSeconds {
			t.Errorf("expected seconds, got %s", cat.DurationUnit)
		}
		if *cat.Tracks[0].Popularity != 80 || cat.Tracks[2].Popularity != nil {
			t.Error("unexpected popularity values")
		}
		if *cat.Tracks[1].DurationMs != 240000 {
			t.Errorf("expected seconds scaled to ms, got %v", *cat.Tracks[1].DurationMs)
		}
		if *cat.Tracks[0].Energy != 0.9 || *cat.Tracks[1].Danceability != 0.8 {
			t.Error("unexpected audio features")
		}
		if !slices.Equal(cat.Columns, []string{"track_name", "artist", "genre", "popularity", "energy", "danceability", "duration", "duration_ms"}) {
			t.Errorf("unexpected columns %v", cat.Columns)
		}
	})

	t.Run("Milliseconds", func(t *testing.T) {
		cat, err := Read(strings.NewReader("song,duration_ms\nA,200000\nB,180000\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cat.DurationUnit != DurationMilliseconds || *cat.Tracks[0].DurationMs != 200000 {
			t.Errorf("expected milliseconds kept, got %s %v", cat.DurationUnit, *cat.Tracks[0].DurationMs)
		}
	})

	t.Run("Inverted Rank", func(t *testing.T) {
		cat, err := Read(strings.NewReader("name,rank\nA,1\nB,2\nC,3\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := []float64{*cat.Tracks[0].Popularity, *cat.Tracks[1].Popularity, *cat.Tracks[2].Popularity}
		if !slices.Equal(got, []float64{100, 50, 0}) {
			t.Errorf("expected rank inverted onto 0..100, got %v", got)
		}
	})

	t.Run("Latin-1 Fallback", func(t *testing.T) {
		data := []byte("title,artist\nCaf\xe9,Beyonc\xe9\n")
		cat, err := Read(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cat.Encoding != EncodingLatin1 {
			t.Errorf("expected latin-1, got %s", cat.Encoding)
		}
		if *cat.Tracks[0].TrackName != "Café" || *cat.Tracks[0].Artist != "Beyoncé" {
			t.Errorf("unexpected decoded values %q %q", *cat.Tracks[0].TrackName, *cat.Tracks[0].Artist)
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		if _, err := Read(strings.NewReader("")); !errors.Is(err, shared.ErrInvalidCSV) {
			t.Errorf("expected ErrInvalidCSV, got %v", err)
		}
	})

	t.Run("Header Only", func(t *testing.T) {
		cat, err := Read(strings.NewReader("title,artist\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cat.Tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(cat.Tracks))
		}
	})
}

func TestCorrelate(t *testing.T) {
	tracks := []models.CatalogTrack{
		{Popularity: models.Ptr(10.0), Energy: models.Ptr(1.0), DurationMs: models.Ptr(100.0)},
		{Popularity: models.Ptr(20.0), Energy: models.Ptr(2.0), DurationMs: models.Ptr(100.0)},
		{Popularity: models.Ptr(30.0), Energy: models.Ptr(3.0), DurationMs: models.Ptr(100.0)},
		{Popularity: models.Ptr(40.0)},
	}

	corr := Correlate(tracks)

	if _, ok := corr["danceability"]; ok {
		t.Error("expected danceability left out")
	}
	if r := corr["popularity"]["energy"]; r == nil || *r != 1 {
		t.Errorf("expected perfect correlation, got %v", r)
	}
	if r := corr["popularity"]["popularity"]; r == nil || *r != 1 {
		t.Errorf("expected diagonal 1, got %v", r)
	}
	if corr["energy"]["duration_ms"] != nil {
		t.Error("expected nil coefficient for constant column")
	}

	if got := Correlate(nil); len(got) != 0 {
		t.Errorf("expected empty matrix, got %v", got)
	}
}
