// Package services talks to the catalog API.
//
// [APIService] performs raw requests and maps non-2xx responses onto the shared sentinel errors
// ([shared.ErrUnauthorized], [shared.ErrServiceUnavailable], [shared.ErrAPIRequest]).
//
// [CatalogClient] implements [Catalog] on top of it, decoding the three dashboard payloads:
//   - /api/top-artists and /api/top-genres: ordered {label: count} objects, decoded into [models.Aggregate]
//   - /api/tracks: a {"rows": n, "data": [...]} envelope, normalized with [pipeline.NormalizeJSON]
//
// [NewHTTPClient] attaches the configured bearer token through an oauth2 static token source.
package services
