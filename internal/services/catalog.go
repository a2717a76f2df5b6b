package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/pipeline"
	"github.com/desertthunder/songdash/internal/shared"
)

// CatalogClient decodes the catalog API's payloads on top of an [APIService].
type CatalogClient struct {
	api *APIService
}

// NewCatalogClient wraps api.
func NewCatalogClient(api *APIService) *CatalogClient {
	return &CatalogClient{api: api}
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *CatalogClient) TopArtists(ctx context.Context, limit int) (models.Aggregate, error) {
	var payload struct {
		TopArtists models.Aggregate `json:"top_artists"`
	}
	if err := c.api.GetJSON(ctx, "/api/top-artists", limitQuery(limit), &payload); err != nil {
		return nil, err
	}
	return ensure(payload.TopArtists), nil
}

func (c *CatalogClient) TopGenres(ctx context.Context, limit int) (models.Aggregate, error) {
	var payload struct {
		TopGenres models.Aggregate `json:"top_genres"`
	}
	if err := c.api.GetJSON(ctx, "/api/top-genres", limitQuery(limit), &payload); err != nil {
		return nil, err
	}
	return ensure(payload.TopGenres), nil
}

// Tracks fetches the data envelope and runs it through the record normalizer, so malformed fields arrive
// as absent values.
func (c *CatalogClient) Tracks(ctx context.Context, q TrackQuery) ([]models.TrackRecord, error) {
	query := limitQuery(q.Limit)
	if !models.IsSentinel(q.Genre) {
		query.Set("genre", q.Genre)
	}
	if !models.IsSentinel(q.Artist) {
		query.Set("artist", q.Artist)
	}

	resp, err := c.api.Get(ctx, "/api/tracks", query)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	records, err := pipeline.NormalizeJSON(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return records, nil
}

func (c *CatalogClient) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.api.GetJSON(ctx, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *CatalogClient) Columns(ctx context.Context) ([]string, error) {
	var payload struct {
		Columns []string `json:"columns"`
	}
	if err := c.api.GetJSON(ctx, "/api/meta", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Columns, nil
}

func (c *CatalogClient) Correlation(ctx context.Context) (models.Correlation, error) {
	var payload struct {
		Correlation models.Correlation `json:"correlation"`
	}
	if err := c.api.GetJSON(ctx, "/api/correlation", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Correlation, nil
}

func ensure(agg models.Aggregate) models.Aggregate {
	if agg == nil {
		return models.Aggregate{}
	}
	return agg
}
