package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bogem/id3v2/v2"

	"github.com/dmarro/tunepull/internal/domain"
)

// tag embeds the track metadata into the encoded file: title, artist and
// album text frames, front-cover art fetched from the request's URL, and an
// empty lyrics frame. Artwork is best-effort; a failed fetch is logged and
// the file is produced without it.
func (p *Pipeline) tag(ctx context.Context, mp3Path string, req domain.TrackAcquisition) error {
	tag, err := id3v2.Open(mp3Path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open mp3 for tagging: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(req.Title)
	tag.SetArtist(req.Artist)
	tag.SetAlbum(req.Album)

	if art, err := p.fetchCover(ctx, req.AlbumCoverURL); err != nil {
		p.logger.Error("could not fetch album cover", "url", req.AlbumCoverURL, "error", err)
	} else {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: req.Album + " Front Cover",
			Picture:     art,
		})
	}

	// Some music players don't recognize the artist when the track doesn't
	// have a lyrics tag.
	tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
		Encoding:          id3v2.EncodingUTF8,
		Language:          "   ",
		ContentDescriptor: "",
		Lyrics:            "",
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}
	return nil
}

func (p *Pipeline) fetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
