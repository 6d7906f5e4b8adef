package youtube

import (
	"strings"

	"github.com/dmarro/tunepull/internal/domain"
)

// mapSearchResults converts an innertube search response into domain
// results, skipping non-video entries (playlists, channels, shelves).
func mapSearchResults(sr *searchResponse) []domain.VideoResult {
	results := []domain.VideoResult{}
	for _, section := range sr.Contents.SectionListRenderer.Contents {
		for _, item := range section.ItemSectionRenderer.Contents {
			vr := item.VideoRenderer
			if vr == nil || vr.VideoID == "" {
				continue
			}
			results = append(results, domain.VideoResult{
				VideoID:      vr.VideoID,
				WatchURL:     watchURLPrefix + vr.VideoID,
				Title:        vr.Title.text(),
				Author:       vr.OwnerText.text(),
				ThumbnailURL: bestThumbnail(vr.Thumbnail.Thumbnails),
			})
		}
	}
	return results
}

// bestThumbnail returns the largest thumbnail's URL with any query string
// stripped.
func bestThumbnail(thumbs []thumbnail) string {
	var best thumbnail
	for _, t := range thumbs {
		if t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	return strings.SplitN(best.URL, "?", 2)[0]
}
