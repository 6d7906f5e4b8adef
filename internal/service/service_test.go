package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmarro/tunepull/internal/cache"
	"github.com/dmarro/tunepull/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache(t *testing.T) *cache.Store {
	t.Helper()
	return cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json"), time.Minute, testLogger())
}

type fakeVideoSearcher struct {
	calls   int
	results []domain.VideoResult
	err     error
}

func (f *fakeVideoSearcher) SearchVideos(_ context.Context, _ string) ([]domain.VideoResult, error) {
	f.calls++
	return f.results, f.err
}

type fakeTrackSearcher struct {
	calls   int
	results []domain.TrackMetadata
	err     error
}

func (f *fakeTrackSearcher) SearchTracks(_ context.Context, _ domain.PartialTrackMetadata) ([]domain.TrackMetadata, error) {
	f.calls++
	return f.results, f.err
}

func video(id, title string) domain.VideoResult {
	return domain.VideoResult{VideoID: id, WatchURL: "https://www.youtube.com/watch?v=" + id, Title: title}
}

func TestSearchService_RanksFuzzyMatchesFirst(t *testing.T) {
	src := &fakeVideoSearcher{results: []domain.VideoResult{
		video("v1", "Unrelated Vlog Episode 12"),
		video("v2", "Daft Punk - Harder Better Faster Stronger"),
		video("v3", "harder better faster stronger (live)"),
	}}
	svc := NewSearchService(src, testCache(t), testLogger())

	results, err := svc.Search(context.Background(), "harder better faster stronger")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].VideoID == "v1" {
		t.Errorf("unmatched result ranked first: %+v", results[0])
	}
	if results[2].VideoID != "v1" {
		t.Errorf("unmatched result should rank last, got %q", results[2].VideoID)
	}
}

func TestSearchService_CachesResults(t *testing.T) {
	src := &fakeVideoSearcher{results: []domain.VideoResult{video("v1", "a song")}}
	svc := NewSearchService(src, testCache(t), testLogger())

	for i := 0; i < 3; i++ {
		results, err := svc.Search(context.Background(), "A Song")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 || results[0].VideoID != "v1" {
			t.Fatalf("unexpected results: %+v", results)
		}
	}
	if src.calls != 1 {
		t.Errorf("upstream called %d times, want 1", src.calls)
	}
}

func TestSearchService_EmptyQueryIsNoop(t *testing.T) {
	src := &fakeVideoSearcher{}
	svc := NewSearchService(src, testCache(t), testLogger())

	results, err := svc.Search(context.Background(), "")
	if err != nil || results != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", results, err)
	}
	if src.calls != 0 {
		t.Errorf("upstream called %d times, want 0", src.calls)
	}
}

func TestSearchService_UpstreamErrorIsNotCached(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeVideoSearcher{err: boom}
	svc := NewSearchService(src, testCache(t), testLogger())

	if _, err := svc.Search(context.Background(), "q"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	src.err = nil
	src.results = []domain.VideoResult{video("v1", "q")}
	results, err := svc.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search after recovery: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if src.calls != 2 {
		t.Errorf("upstream called %d times, want 2", src.calls)
	}
}

func TestMetadataService_CachesResults(t *testing.T) {
	prov := &fakeTrackSearcher{results: []domain.TrackMetadata{
		{Title: "One More Time", Artist: "Daft Punk", Album: "Discovery", AlbumCoverURL: "https://img/1.jpg"},
	}}
	svc := NewMetadataService(prov, testCache(t), testLogger())

	partial := domain.PartialTrackMetadata{Title: "One More Time", Artist: "Daft Punk"}
	for i := 0; i < 2; i++ {
		tracks, err := svc.Search(context.Background(), partial)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(tracks) != 1 || tracks[0].Album != "Discovery" {
			t.Fatalf("unexpected tracks: %+v", tracks)
		}
	}
	if prov.calls != 1 {
		t.Errorf("provider called %d times, want 1", prov.calls)
	}
}

func TestMetadataService_DistinctDescriptionsMissCache(t *testing.T) {
	prov := &fakeTrackSearcher{results: []domain.TrackMetadata{}}
	svc := NewMetadataService(prov, testCache(t), testLogger())

	ctx := context.Background()
	if _, err := svc.Search(ctx, domain.PartialTrackMetadata{Title: "x", Artist: "y"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Search(ctx, domain.PartialTrackMetadata{Title: "x", Artist: "y", Album: "z"}); err != nil {
		t.Fatal(err)
	}
	if prov.calls != 2 {
		t.Errorf("provider called %d times, want 2", prov.calls)
	}
}
