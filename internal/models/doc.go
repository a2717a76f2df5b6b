// Package models defines the data types shared by the songdash pipeline, its fetch layer and its presentation layers.
//
// The package contains two categories of types:
//
// 1. Snapshot types: immutable values built once per session from the catalog API
//   - [TrackRecord] : One catalog entry with every field optional
//   - [Aggregate] : Insertion-ordered label → metric mapping as delivered by the catalog API
//   - [Snapshot] : The three payloads of one fetch, normalized
//
// 2. Derived types: recomputed from a snapshot plus the current [FilterSelection], never mutated in place
//   - [AggregateBucket] : One entry of a Top-N ranking
//   - [FacetSet] : Selectable values of one filter dimension, led by the [Sentinel]
//   - [FilteredView] : Bounded prefix of the records matching a selection
//
// [CatalogTrack] is the persisted row served by the catalog API; it carries the extra audio features
// (energy, danceability) that the dashboard ignores.
package models
