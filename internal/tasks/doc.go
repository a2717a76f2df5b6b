// Package tasks runs the application's long-running operations with progress reporting.
//
// # Operations
//
//  1. [SnapshotLoader.Load] : fetch a dashboard snapshot from the catalog API
//     - Requests top artists, top genres and tracks concurrently
//     - Paces requests with a token-bucket rate limiter
//     - Fails as a whole when any request fails, canceling the others
//
//  2. [Importer.Import] : replace the stored catalog with a CSV
//     - Parses and derives columns with the catalog package
//     - Swaps the stored rows in one transaction
//     - Records the import in the import history
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Updates are sent with select/default,
// so a slow or absent reader never blocks the operation and may miss updates.
package tasks
