// package session holds the dashboard's loaded snapshot and derives what the presentation layers render.
//
// A session moves through Idle, Loading, Ready and Failed. Every load takes a [Ticket]; only the newest
// ticket may complete, so a slow fetch that finishes after a newer one is discarded.
package session
