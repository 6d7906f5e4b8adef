// Package spotify implements the track-metadata provider client: a
// client-credentials token exchange and a track search. Access tokens are
// memoized in the shared TTL cache.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmarro/tunepull/internal/cache"
	"github.com/dmarro/tunepull/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second

	tokenCacheKey = "spotify_api_token"
)

// Client is a metadata provider API client
type Client struct {
	searchURL    string
	tokenURL     string
	clientID     string
	clientSecret string

	httpClient *http.Client
	cache      *cache.Store
	logger     *slog.Logger

	// Collapses concurrent token fetches into one upstream exchange.
	sf singleflight.Group
}

// NewClient creates a new provider client
func NewClient(searchURL, tokenURL, clientID, clientSecret string, store *cache.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		searchURL:    searchURL,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		cache:  store,
		logger: logger,
	}
}

// token returns a usable access token, fetching a fresh one when the cache
// has none or the cached token has passed its own expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	var tok domain.AccessToken
	if c.cache.Get(tokenCacheKey, &tok) && tok.Valid(time.Now()) {
		c.logger.Debug("provider token retrieved from cache")
		return tok.Token, nil
	}

	v, err, _ := c.sf.Do(tokenCacheKey, func() (any, error) {
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("token request failed", "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamAuth, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: undecodable token response", domain.ErrUpstreamAuth)
	}
	if tr.Error != "" || tr.AccessToken == "" {
		c.logger.Error("token exchange rejected", "error", tr.Error, "description", tr.ErrorDescription)
		return "", fmt.Errorf("%w: %s", domain.ErrUpstreamAuth, tr.Error)
	}

	tok := domain.AccessToken{
		Token:     tr.AccessToken,
		ExpiresAt: time.Now().UTC().Unix() + tr.ExpiresIn,
	}
	c.cache.Set(tokenCacheKey, tok)

	c.logger.Info("fetched new provider access token")
	return tok.Token, nil
}

// SearchTracks queries the provider for metadata candidates matching the
// partial metadata. A non-success status or an unexpectedly shaped response
// is logged and yields an empty result, never an error: degraded search
// beats a failed request.
func (c *Client) SearchTracks(ctx context.Context, partial domain.PartialTrackMetadata) ([]domain.TrackMetadata, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("q", buildQuery(partial))
	query.Set("type", "track")
	query.Set("limit", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("track search failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("provider search done", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("error fetching track metadata", "status", resp.StatusCode)
		return []domain.TrackMetadata{}, nil
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		c.logger.Error("provider search response has an unexpected format", "error", err)
		return []domain.TrackMetadata{}, nil
	}

	return mapTracks(&sr), nil
}

// buildQuery combines free text with the provider's field filters.
func buildQuery(p domain.PartialTrackMetadata) string {
	query := p.Title + " " + p.Artist
	filters := "track:" + p.Title + " artist:" + p.Artist
	if p.Album != "" {
		filters += " album:" + p.Album
	}
	return query + " " + filters
}
