// Package pipeline turns a source video into a tagged MP3: download the
// audio stream, transcode it with the external encoder, embed metadata and
// artwork. Temporary files live exactly as long as one acquisition.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dmarro/tunepull/internal/domain"
)

const coverFetchTimeout = 30 * time.Second

// AudioSource downloads a video's audio stream into an existing placeholder
// file. youtube.Client implements it.
type AudioSource interface {
	FetchAudio(ctx context.Context, videoID, destPath string) error
}

// Pipeline orchestrates one acquisition per call. Safe for concurrent use:
// every call owns its temporary files exclusively.
type Pipeline struct {
	source     AudioSource
	ffmpegPath string
	tempDir    string // "" means the system temp directory
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates an acquisition pipeline
func New(source AudioSource, ffmpegPath, tempDir string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:     source,
		ffmpegPath: ffmpegPath,
		tempDir:    tempDir,
		httpClient: &http.Client{
			Timeout: coverFetchTimeout,
		},
		logger: logger,
	}
}

// Acquire downloads, transcodes, and tags one track. On success it returns
// the finished MP3 path and a release function that removes both temporary
// files; the caller invokes release after fully consuming the file. On any
// failure both temporary files are removed before the error is returned,
// so no exit path leaks.
func (p *Pipeline) Acquire(ctx context.Context, req domain.TrackAcquisition) (string, func(), error) {
	rawPath, err := p.tempFile("tunepull-*.mp4")
	if err != nil {
		return "", nil, err
	}
	mp3Path, err := p.tempFile("tunepull-*.mp3")
	if err != nil {
		os.Remove(rawPath)
		return "", nil, err
	}

	release := func() {
		p.removeTemp(rawPath)
		p.removeTemp(mp3Path)
	}

	if err := p.source.FetchAudio(ctx, req.VideoID, rawPath); err != nil {
		release()
		return "", nil, err
	}

	if err := p.transcode(rawPath, mp3Path); err != nil {
		release()
		return "", nil, err
	}

	if err := p.tag(ctx, mp3Path, req); err != nil {
		release()
		return "", nil, err
	}

	return mp3Path, release, nil
}

// tempFile creates an empty uniquely-named placeholder and returns its path.
func (p *Pipeline) tempFile(pattern string) (string, error) {
	f, err := os.CreateTemp(p.tempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (p *Pipeline) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}
