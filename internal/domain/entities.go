package domain

import "time"

// VideoResult is one candidate returned by a video search against the
// audio-hosting service.
type VideoResult struct {
	VideoID      string `json:"videoId"`
	WatchURL     string `json:"watchUrl"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// PartialTrackMetadata is the caller-supplied portion of a metadata search.
// Album is optional; Title and Artist are required by the upstream provider.
type PartialTrackMetadata struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// TrackMetadata is a fully resolved metadata candidate for a track.
type TrackMetadata struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Album         string `json:"album"`
	AlbumCoverURL string `json:"albumCoverUrl"`
}

// TrackAcquisition describes one request to produce a tagged MP3 from a
// source video. All fields are required and opaque to the pipeline.
type TrackAcquisition struct {
	VideoID       string
	Title         string
	Artist        string
	Album         string
	AlbumCoverURL string
}

// AccessToken is an upstream API token together with its absolute expiry.
type AccessToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Valid reports whether the token is usable at time now.
func (t AccessToken) Valid(now time.Time) bool {
	return t.Token != "" && now.UTC().Unix() < t.ExpiresAt
}
