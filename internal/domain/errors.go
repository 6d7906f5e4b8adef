package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrVideoNotFound indicates the requested video does not exist upstream
	ErrVideoNotFound = errors.New("video not found")

	// ErrTranscodeFailed indicates the external encoder exited non-zero
	ErrTranscodeFailed = errors.New("audio transcode failed")

	// ErrUpstreamAuth indicates the provider token exchange failed
	ErrUpstreamAuth = errors.New("upstream token exchange failed")

	// ErrSourceUnreachable indicates the audio-hosting service is unreachable
	ErrSourceUnreachable = errors.New("audio source is unreachable")
)
