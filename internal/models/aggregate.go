package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// AggregateBucket is one entry of a Top-N ranking.
type AggregateBucket struct {
	Label string  `json:"label"`
	Count float64 `json:"count"`
}

// Aggregate is an insertion-ordered mapping of category label to metric value.
//
// Its JSON form is an object whose key order is preserved in both directions.
// Duplicate keys keep the position of their first occurrence and the last value.
// Members whose value is not a finite, non-negative number are dropped.
type Aggregate []AggregateBucket

// Get returns the metric for label.
func (a Aggregate) Get(label string) (float64, bool) {
	for _, b := range a {
		if b.Label == label {
			return b.Count, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the aggregate as a JSON object in slice order.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.Count)
		if err != nil {
			return nil, fmt.Errorf("aggregate %q: %w", b.Label, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order. A JSON null decodes to an empty aggregate.
func (a *Aggregate) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	if tok == nil {
		*a = Aggregate{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("aggregate: expected object, got %v", tok)
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("aggregate: expected key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("aggregate %q: %w", key, err)
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	out := make(Aggregate, 0, len(keys))
	for _, key := range keys {
		if n, ok := metric(values[key]); ok {
			out = append(out, AggregateBucket{Label: key, Count: n})
		}
	}
	*a = out
	return nil
}

func metric(raw json.RawMessage) (float64, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
