package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var artistSeparator = regexp.MustCompile(`(?i)(,|/|&|feat\.|ft\.)`)

// FirstArtist returns the leading artist of a credit such as "A feat. B" or "A & B".
func FirstArtist(credit string) string {
	return strings.TrimSpace(artistSeparator.Split(credit, 2)[0])
}

// ParseNumber parses s after removing thousands separators and percent signs.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", "%", "").Replace(s)
	if s == "" {
		return 0, false
	}
	return finite(strconv.ParseFloat(s, 64))
}

// ParseDuration reads "h:m:s" or "m:s" into milliseconds. A value without a colon is returned as a
// plain number in whatever unit it was written in.
func ParseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false
	}

	if !strings.Contains(s, ":") {
		return finite(strconv.ParseFloat(s, 64))
	}

	parts := strings.Split(s, ":")
	var h, m int
	var sec float64
	var err error
	switch len(parts) {
	case 3:
		if h, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
			return 0, false
		}
		parts = parts[1:]
		fallthrough
	case 2:
		if m, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
			return 0, false
		}
		if sec, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}

	return finite((float64(h*3600+m*60)+sec)*1000, nil)
}

func finite(v float64, err error) (float64, bool) {
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
