package services

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/desertthunder/songdash/internal/shared"
)

// NewHTTPClient builds the client used for catalog API calls.
//
// When a token is configured every request carries it as a bearer token.
func NewHTTPClient(cfg shared.APIConfig) *http.Client {
	if cfg.Token == "" {
		return &http.Client{Timeout: cfg.Timeout()}
	}

	base := &http.Client{Timeout: cfg.Timeout()}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})

	client := oauth2.NewClient(ctx, src)
	client.Timeout = cfg.Timeout()
	return client
}
