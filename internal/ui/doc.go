// Package ui implements the terminal dashboard using bubbletea's Elm architecture.
//
// The TUI moves between four views:
//  1. [LoadingView] : spinner and fetch progress while a snapshot loads
//  2. [DashboardView] : Top-N bar charts plus the bounded, filtered track table
//  3. [PickerView] : choose a genre or artist facet value
//  4. [FailedView] : the fetch error, shown once, with a retry key
//
// The [Model] implements Init/Update/View and receives messages via the Msg union type. Each load takes a
// ticket from the [session.Session]; a result arriving for an older ticket is discarded so only the
// newest snapshot is ever shown. Progress updates from the loader arrive over a channel without blocking it.
//
// Keys: g/a pick genre/artist, x clears filters, l toggles catalog and snapshot counts, r reloads, q quits.
package ui
