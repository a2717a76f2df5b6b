// Package server provides HTTP routing, middleware and the catalog API handler.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements it on
// [http.ServeMux] with method filtering. [Middleware] registered first runs first.
//
// # Middleware
//
//   - [RequestLogger] : request ID (X-Request-Id) plus a structured log line per request
//   - [Recover] : converts handler panics into 500 responses
//   - [CORS] : origin allow list with preflight handling
//   - [BearerAuth] : optional static bearer token
//
// # Catalog API
//
// [CatalogHandler] serves the read-only catalog consumed by the dashboards:
//
//	GET /api/health       {"status":"ok","rows":N,"columns":[...]}
//	GET /api/meta         {"columns":[...]}
//	GET /api/top-artists  {"top_artists":{name:count,...}} in rank order (?limit=10)
//	GET /api/top-genres   {"top_genres":{name:count,...}} in rank order (?limit=10)
//	GET /api/tracks       {"rows":n,"data":[...]} filtered by ?genre= and ?artist= (?limit=100)
//	GET /api/correlation  {"correlation":{col:{col:r}}}
//	GET /api/debug        row count, columns, a five row sample and the latest import
//
// Errors are JSON objects of the form {"detail": "..."}; an invalid limit is a 400.
package server
