// Package repositories implements SQLite persistence for the song catalog.
//
// Key Implementations:
//   - [TrackRepository] : catalog rows with replace-all import, case-insensitive filtered listing and
//     ranked counts per column
//   - [ImportRepository] : history of catalog imports
//
// Rows keep their CSV position in the sequence column. Listings are ordered by it and ranking ties are
// broken by the smallest sequence, so results follow the source file.
//
// Case-insensitive comparisons use the fold() SQL function registered by [shared.NewDatabase].
package repositories
