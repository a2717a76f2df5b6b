// Package catalog turns a songs CSV into catalog rows.
//
// Column names are normalized, then the track, artist, genre, popularity and duration columns are
// discovered by ordered name patterns. Popularity comes from a popularity column when one exists and is
// otherwise derived from views, streams, rank or score. Durations are read from a "m:s" string column or
// from a numeric column whose unit is guessed from its median.
//
// Files that are not valid UTF-8 are decoded as Latin-1.
package catalog
