// Package pipeline turns a snapshot of track records into the dashboard's derived views.
//
// Every function is pure and total: inputs are never mutated, results are fresh values, and malformed or
// empty input yields an empty result rather than an error.
//
//  1. [Normalize] : Loosely typed JSON records → [models.TrackRecord], degrading bad fields to absent
//  2. [TopN] : Ranked buckets from an ordered aggregate, ties kept in input order
//  3. [CountBy] : Local alternative to the catalog's pre-aggregated maps
//  4. [FacetValues] : Sorted distinct values of a field, led by [models.Sentinel]
//  5. [ApplyFilter] : Case-insensitive conjunction of the active selections
//  6. [Bound] : Display prefix plus true and displayed counts
package pipeline
