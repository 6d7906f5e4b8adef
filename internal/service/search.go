package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/singleflight"

	"github.com/dmarro/tunepull/internal/cache"
	"github.com/dmarro/tunepull/internal/domain"
)

const searchCachePrefix = "search_video_"

// VideoSearcher looks up candidate videos for a free-text query.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string) ([]domain.VideoResult, error)
}

// SearchService answers video search queries, caching results and
// collapsing concurrent lookups for the same query into one upstream call.
type SearchService struct {
	source VideoSearcher
	cache  *cache.Store
	sf     singleflight.Group
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(source VideoSearcher, store *cache.Store, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		source: source,
		cache:  store,
		logger: logger,
	}
}

// Search returns videos matching the query, best matches first.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.VideoResult, error) {
	if query == "" {
		return nil, nil
	}

	key := searchCachePrefix + strings.ToLower(query)

	var cached []domain.VideoResult
	if s.cache.Get(key, &cached) {
		s.logger.Debug("search cache hit", "query", query, "results", len(cached))
		return cached, nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		results, err := s.source.SearchVideos(ctx, query)
		if err != nil {
			return nil, err
		}
		ranked := rankResults(results, query)
		s.cache.Set(key, ranked)
		return ranked, nil
	})
	if err != nil {
		return nil, err
	}

	results := v.([]domain.VideoResult)
	s.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// rankResults reorders upstream results so fuzzy title matches come first.
// Matched entries sort by edit distance; unmatched ones keep upstream order.
func rankResults(items []domain.VideoResult, query string) []domain.VideoResult {
	if len(items) == 0 {
		return items
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = strings.ToLower(item.Title)
	}

	matches := fuzzy.RankFindFold(strings.ToLower(query), titles)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	results := make([]domain.VideoResult, 0, len(items))
	ranked := make([]bool, len(items))
	for _, match := range matches {
		results = append(results, items[match.OriginalIndex])
		ranked[match.OriginalIndex] = true
	}

	// Anything fuzzy matching filtered out keeps its upstream order.
	for i, item := range items {
		if !ranked[i] {
			results = append(results, item)
		}
	}

	return results
}
