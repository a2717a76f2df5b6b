package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/desertthunder/songdash/internal/models"
)

// Normalize maps raw decoded JSON values onto [models.TrackRecord] in input order.
//
// A field is copied only when it holds the expected primitive type; anything else is left absent.
// Elements that are not JSON objects produce an all-absent record.
func Normalize(raw []any) []models.TrackRecord {
	out := make([]models.TrackRecord, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out[i] = models.TrackRecord{
			TrackName:  stringField(obj, "track_name"),
			Artist:     stringField(obj, "artist"),
			Genre:      stringField(obj, "genre"),
			Popularity: numberField(obj, "popularity"),
			DurationMs: numberField(obj, "duration_ms"),
		}
	}
	return out
}

// NormalizeJSON decodes a `{"data": [...]}` payload and normalizes its elements.
//
// A missing or null data member yields no records.
func NormalizeJSON(data []byte) ([]models.TrackRecord, error) {
	var envelope struct {
		Data []any `json:"data"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode tracks: %w", err)
	}
	return Normalize(envelope.Data), nil
}

func stringField(obj map[string]any, key string) *string {
	s, ok := obj[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func numberField(obj map[string]any, key string) *float64 {
	var n float64
	switch v := obj[key].(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case int32:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		n = f
	default:
		return nil
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}
