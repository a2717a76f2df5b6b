package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songdash/internal/catalog"
	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/repositories"
)

// Catalog API paths
const (
	PathHealth      = "/api/health"
	PathMeta        = "/api/meta"
	PathTopArtists  = "/api/top-artists"
	PathTopGenres   = "/api/top-genres"
	PathTracks      = "/api/tracks"
	PathCorrelation = "/api/correlation"
	PathDebug       = "/api/debug"
)

// Default limits when the query string has none.
const (
	DefaultTopLimit   = 10
	DefaultTrackLimit = 100
	debugSampleSize   = 5
)

// TrackStore is the catalog storage the API reads from.
type TrackStore interface {
	List(ctx context.Context, f repositories.TrackFilter) ([]models.CatalogTrack, error)
	TopBy(ctx context.Context, field models.Field, limit int) (models.Aggregate, error)
	Count(ctx context.Context) (int, error)
	Columns(ctx context.Context) ([]string, error)
}

// ImportHistory reports the latest catalog import.
type ImportHistory interface {
	Latest(ctx context.Context) (*models.ImportRecord, error)
}

// CatalogHandler serves the read-only catalog API.
type CatalogHandler struct {
	tracks  TrackStore
	imports ImportHistory
	logger  *log.Logger
}

// NewCatalogHandler creates a handler over tracks. imports may be nil.
func NewCatalogHandler(tracks TrackStore, imports ImportHistory, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{tracks: tracks, imports: imports, logger: logger}
}

func (h *CatalogHandler) Routes() []string {
	return []string{PathHealth, PathMeta, PathTopArtists, PathTopGenres, PathTracks, PathCorrelation, PathDebug}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var (
		body any
		err  error
	)
	switch r.URL.Path {
	case PathHealth:
		body, err = h.health(r.Context())
	case PathMeta:
		body, err = h.meta(r.Context())
	case PathTopArtists:
		body, err = h.top(r, models.FieldArtist, "top_artists")
	case PathTopGenres:
		body, err = h.top(r, models.FieldGenre, "top_genres")
	case PathTracks:
		body, err = h.list(r)
	case PathCorrelation:
		body, err = h.correlation(r.Context())
	case PathDebug:
		body, err = h.debug(r.Context())
	default:
		WriteError(w, http.StatusNotFound, "not found")
		return
	}

	if err != nil {
		var bad badRequest
		if errors.As(err, &bad) {
			WriteError(w, http.StatusBadRequest, string(bad))
			return
		}
		h.logger.Error("catalog request failed", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, body)
}

type badRequest string

func (b badRequest) Error() string { return string(b) }

// limitParam reads a positive integer "limit" query parameter.
func limitParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("limit must be an integer, got %q", raw))
	}
	if n < 1 {
		return 0, badRequest(fmt.Sprintf("limit must be at least 1, got %d", n))
	}
	return n, nil
}

type healthResponse struct {
	Status  string   `json:"status"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

func (h *CatalogHandler) health(ctx context.Context) (any, error) {
	rows, err := h.tracks.Count(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := h.tracks.Columns(ctx)
	if err != nil {
		return nil, err
	}
	return healthResponse{Status: "ok", Rows: rows, Columns: cols}, nil
}

func (h *CatalogHandler) meta(ctx context.Context) (any, error) {
	cols, err := h.tracks.Columns(ctx)
	if err != nil {
		return nil, err
	}
	return map[string][]string{"columns": cols}, nil
}

func (h *CatalogHandler) top(r *http.Request, field models.Field, key string) (any, error) {
	limit, err := limitParam(r, DefaultTopLimit)
	if err != nil {
		return nil, err
	}
	agg, err := h.tracks.TopBy(r.Context(), field, limit)
	if err != nil {
		return nil, err
	}
	return map[string]models.Aggregate{key: agg}, nil
}

type tracksResponse struct {
	Rows int                   `json:"rows"`
	Data []models.CatalogTrack `json:"data"`
}

func (h *CatalogHandler) list(r *http.Request) (any, error) {
	limit, err := limitParam(r, DefaultTrackLimit)
	if err != nil {
		return nil, err
	}

	q := r.URL.Query()
	tracks, err := h.tracks.List(r.Context(), repositories.TrackFilter{
		Genre:  q.Get("genre"),
		Artist: q.Get("artist"),
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return tracksResponse{Rows: len(tracks), Data: tracks}, nil
}

func (h *CatalogHandler) correlation(ctx context.Context) (any, error) {
	tracks, err := h.tracks.List(ctx, repositories.TrackFilter{})
	if err != nil {
		return nil, err
	}
	return map[string]models.Correlation{"correlation": catalog.Correlate(tracks)}, nil
}

type debugResponse struct {
	Source  string                `json:"source"`
	Exists  bool                  `json:"exists"`
	Rows    int                   `json:"rows"`
	Columns []string              `json:"columns"`
	Sample  []models.CatalogTrack `json:"sample"`
	Import  *models.ImportRecord  `json:"import,omitempty"`
}

func (h *CatalogHandler) debug(ctx context.Context) (any, error) {
	rows, err := h.tracks.Count(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := h.tracks.Columns(ctx)
	if err != nil {
		return nil, err
	}
	sample, err := h.tracks.List(ctx, repositories.TrackFilter{Limit: debugSampleSize})
	if err != nil {
		return nil, err
	}

	resp := debugResponse{Rows: rows, Columns: cols, Sample: sample}
	if h.imports != nil {
		rec, err := h.imports.Latest(ctx)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			resp.Import = rec
			resp.Source = rec.Source
			resp.Exists = true
		}
	}
	return resp, nil
}

// NewCatalogRouter wires the catalog API with request logging, panic recovery, CORS and optional bearer
// auth. The health endpoint stays open when auth is enabled.
func NewCatalogRouter(h *CatalogHandler, cfg CatalogRouterOpts, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestLogger(logger), Recover(logger), CORS(cfg.AllowOrigins), BearerAuth(cfg.Token, PathHealth))
	router.Handler(h)
	return router
}

// CatalogRouterOpts configures [NewCatalogRouter].
type CatalogRouterOpts struct {
	AllowOrigins string
	Token        string
}
