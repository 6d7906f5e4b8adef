// Package youtube talks to the audio-hosting service: video search,
// stream resolution by video ID, and stream download into a caller-owned
// file.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dmarro/tunepull/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "tunepull/1.0"

	clientName    = "ANDROID"
	clientVersion = "19.09.37"

	watchURLPrefix = "https://www.youtube.com/watch?v="

	// Only the stream download is retried; resolution is not.
	maxDownloadAttempts = 3
)

// Stream is a resolved, directly downloadable audio stream.
type Stream struct {
	URL      string
	MimeType string
	Bitrate  int
}

// Client is an innertube API client. The base URL is configurable so tests
// can point it at a local server.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	downloadClient *http.Client
	logger         *slog.Logger
}

// NewClient creates a new hosting-service client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		// No overall timeout on downloads: large streams legitimately take
		// longer than any fixed request budget.
		downloadClient: &http.Client{},
		logger:         logger,
	}
}

// doRequest posts a JSON payload to an innertube endpoint and decodes the
// response into dest.
func (c *Client) doRequest(ctx context.Context, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("youtube request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("youtube request failed", "path", path, "error", err)
		return domain.ErrSourceUnreachable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("youtube request error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Resolve looks up videoID and returns its best available audio-only
// stream. A video the service cannot play maps to domain.ErrVideoNotFound.
func (c *Client) Resolve(ctx context.Context, videoID string) (*Stream, error) {
	var pr playerResponse
	payload := playerRequest{VideoID: videoID, Context: defaultContext()}
	if err := c.doRequest(ctx, "/youtubei/v1/player", payload, &pr); err != nil {
		return nil, err
	}

	if pr.PlayabilityStatus.Status != "OK" {
		c.logger.Debug("video not playable",
			"videoId", videoID,
			"status", pr.PlayabilityStatus.Status,
			"reason", pr.PlayabilityStatus.Reason)
		return nil, fmt.Errorf("%w: %s", domain.ErrVideoNotFound, videoID)
	}

	best := bestAudioFormat(pr.StreamingData.AdaptiveFormats)
	if best == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrVideoNotFound, videoID)
	}

	return &Stream{URL: best.URL, MimeType: best.MimeType, Bitrate: best.Bitrate}, nil
}

// bestAudioFormat picks the highest-bitrate audio-only MP4 format.
func bestAudioFormat(formats []adaptiveFormat) *adaptiveFormat {
	var best *adaptiveFormat
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/mp4") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}

// Download writes the stream into destPath. destPath must already exist as
// a writable placeholder file; it is truncated and overwritten. Transient
// failures are retried up to maxDownloadAttempts before giving up.
func (c *Client) Download(ctx context.Context, stream *Stream, destPath string) error {
	if _, err := os.Stat(destPath); err != nil {
		return fmt.Errorf("destination must be an existing file: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxDownloadAttempts; attempt++ {
		if err := c.downloadOnce(ctx, stream.URL, destPath); err != nil {
			lastErr = err
			c.logger.Warn("stream download failed", "attempt", attempt, "error", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrSourceUnreachable, lastErr)
}

func (c *Client) downloadOnce(ctx context.Context, streamURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	f, err := os.OpenFile(destPath, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FetchAudio resolves videoID and downloads its audio stream into destPath.
// On ErrVideoNotFound the destination file is left empty; cleaning it up is
// the caller's responsibility.
func (c *Client) FetchAudio(ctx context.Context, videoID, destPath string) error {
	stream, err := c.Resolve(ctx, videoID)
	if err != nil {
		return err
	}
	c.logger.Debug("downloading audio stream", "videoId", videoID, "mimeType", stream.MimeType)
	return c.Download(ctx, stream, destPath)
}

// SearchVideos queries the hosting service and returns mapped candidates.
func (c *Client) SearchVideos(ctx context.Context, query string) ([]domain.VideoResult, error) {
	var sr searchResponse
	payload := searchRequest{Query: query, Context: defaultContext()}
	if err := c.doRequest(ctx, "/youtubei/v1/search", payload, &sr); err != nil {
		return nil, err
	}
	return mapSearchResults(&sr), nil
}
