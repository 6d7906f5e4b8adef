package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/dmarro/tunepull/internal/cache"
	"github.com/dmarro/tunepull/internal/domain"
)

const metadataCachePrefix = "track_meta_"

// TrackSearcher looks up canonical track metadata for a partial description.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, partial domain.PartialTrackMetadata) ([]domain.TrackMetadata, error)
}

// MetadataService resolves partial track descriptions against the
// metadata provider, caching results per normalized description.
type MetadataService struct {
	provider TrackSearcher
	cache    *cache.Store
	sf       singleflight.Group
	logger   *slog.Logger
}

// NewMetadataService creates a new metadata service.
func NewMetadataService(provider TrackSearcher, store *cache.Store, logger *slog.Logger) *MetadataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataService{
		provider: provider,
		cache:    store,
		logger:   logger,
	}
}

// Search returns candidate track metadata for the partial description.
func (s *MetadataService) Search(ctx context.Context, partial domain.PartialTrackMetadata) ([]domain.TrackMetadata, error) {
	key := metadataKey(partial)

	var cached []domain.TrackMetadata
	if s.cache.Get(key, &cached) {
		s.logger.Debug("metadata cache hit", "title", partial.Title, "artist", partial.Artist)
		return cached, nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		tracks, err := s.provider.SearchTracks(ctx, partial)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, tracks)
		return tracks, nil
	})
	if err != nil {
		return nil, err
	}

	tracks := v.([]domain.TrackMetadata)
	s.logger.Debug("metadata search complete",
		"title", partial.Title, "artist", partial.Artist, "results", len(tracks))
	return tracks, nil
}

func metadataKey(partial domain.PartialTrackMetadata) string {
	return metadataCachePrefix + strings.ToLower(partial.Title+"|"+partial.Artist+"|"+partial.Album)
}
