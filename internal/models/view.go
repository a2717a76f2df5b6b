package models

// IsSentinel reports whether v imposes no constraint. The empty string counts as unset.
func IsSentinel(v string) bool {
	return v == Sentinel || v == ""
}

// FacetSet holds the selectable values of one filter dimension.
//
// Values always starts with [Sentinel], followed by distinct observed values in byte-wise order.
type FacetSet struct {
	Field  Field    `json:"field"`
	Values []string `json:"values"`
}

// Index returns the position of v in the set, or -1.
func (f FacetSet) Index(v string) int {
	for i, val := range f.Values {
		if val == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v is one of the set's values.
func (f FacetSet) Contains(v string) bool {
	return f.Index(v) >= 0
}

// FilterSelection is the current choice for each facet dimension.
type FilterSelection struct {
	Genre  string `json:"genre"`
	Artist string `json:"artist"`
}

// AllSelection returns a selection with no active constraint.
func AllSelection() FilterSelection {
	return FilterSelection{Genre: Sentinel, Artist: Sentinel}
}

// Get returns the selected value for f. Unknown fields report the sentinel.
func (s FilterSelection) Get(f Field) string {
	switch f {
	case FieldGenre:
		return s.Genre
	case FieldArtist:
		return s.Artist
	default:
		return Sentinel
	}
}

// With returns a copy of s with f set to v. Unknown fields leave s unchanged.
func (s FilterSelection) With(f Field, v string) FilterSelection {
	switch f {
	case FieldGenre:
		s.Genre = v
	case FieldArtist:
		s.Artist = v
	}
	return s
}

// Active reports whether any dimension carries a concrete value.
func (s FilterSelection) Active() bool {
	return !IsSentinel(s.Genre) || !IsSentinel(s.Artist)
}

// FilteredView is the bounded prefix of a filtered record sequence.
type FilteredView struct {
	Shown        []TrackRecord `json:"shown"`
	TotalMatched int           `json:"total_matched"`
	Displayed    int           `json:"displayed"`
	Cap          int           `json:"cap"`
}

// Truncated reports whether matches were left out by the cap.
func (v FilteredView) Truncated() bool {
	return v.Displayed < v.TotalMatched
}
