package spotify

import (
	"strings"

	"github.com/dmarro/tunepull/internal/domain"
)

// mapTracks converts provider search items into domain metadata. Album
// images arrive sorted in non-increasing size, so the first one is the
// cover candidate.
func mapTracks(sr *searchResponse) []domain.TrackMetadata {
	out := make([]domain.TrackMetadata, 0, len(sr.Tracks.Items))
	for _, tr := range sr.Tracks.Items {
		names := make([]string, 0, len(tr.Artists))
		for _, a := range tr.Artists {
			names = append(names, a.Name)
		}

		cover := ""
		if len(tr.Album.Images) > 0 {
			cover = tr.Album.Images[0].URL
		}

		out = append(out, domain.TrackMetadata{
			Title:         tr.Name,
			Artist:        strings.Join(names, " & "),
			Album:         tr.Album.Name,
			AlbumCoverURL: cover,
		})
	}
	return out
}
