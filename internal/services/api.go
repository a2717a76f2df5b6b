package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/songdash/internal/shared"
)

// DefaultBaseURL is the catalog API address used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// APIService makes raw HTTP requests to the catalog API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the catalog API.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the API root requests are made against.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err maps a non-2xx response to a wrapped sentinel error, using the body's "detail" field when present.
func (r *APIResponse) Err() error {
	if r.OK() {
		return nil
	}

	detail := http.StatusText(r.StatusCode)
	if m, ok := r.JSONData.(map[string]any); ok {
		if d, ok := m["detail"].(string); ok && d != "" {
			detail = d
		}
	}

	switch {
	case r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrUnauthorized, detail)
	case r.StatusCode >= 500:
		return fmt.Errorf("%w: %d %s", shared.ErrServiceUnavailable, r.StatusCode, detail)
	default:
		return fmt.Errorf("%w: %d %s", shared.ErrAPIRequest, r.StatusCode, detail)
	}
}

// Get performs a GET request to the specified path and returns the raw response.
//
// query may be nil.
func (a *APIService) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// GetJSON performs a GET and decodes a 2xx JSON body into v.
func (a *APIService) GetJSON(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := a.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", shared.ErrAPIRequest, path, err)
	}
	return nil
}
