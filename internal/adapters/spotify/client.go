// Package spotify fetches audio features from the Spotify Web API.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/acoustic-print/internal/core/ports"
	"github.com/ewilliams-labs/acoustic-print/internal/logging"
)

// Config holds the credentials and retry policy of the client.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
	log         zerolog.Logger
}

// compile-time interface assertion
var _ ports.FeatureProvider = (*Client)(nil)

// New builds a client that authenticates with the client credentials flow.
// Tokens are fetched lazily and refreshed by the oauth2 transport.
func New(ctx context.Context, cfg Config) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	return NewClient(cc.Client(ctx), cfg)
}

// NewClient constructs a client on top of an already authenticated
// http.Client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.RetryBackoff,
		log:         logging.Component("spotify"),
	}
}
