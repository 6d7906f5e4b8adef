package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/julienschmidt/httprouter"

	"github.com/dmarro/tunepull/internal/domain"
)

// VideoSearcher answers free-text video queries.
type VideoSearcher interface {
	Search(ctx context.Context, query string) ([]domain.VideoResult, error)
}

// TrackSearcher resolves partial track descriptions to canonical metadata.
type TrackSearcher interface {
	Search(ctx context.Context, partial domain.PartialTrackMetadata) ([]domain.TrackMetadata, error)
}

// Acquirer produces a finished, tagged MP3 for an acquisition request.
// The returned release func must be called once the file has been consumed.
type Acquirer interface {
	Acquire(ctx context.Context, req domain.TrackAcquisition) (string, func(), error)
}

// Server exposes the HTTP API.
type Server struct {
	videos   VideoSearcher
	tracks   TrackSearcher
	acquirer Acquirer
	router   *httprouter.Router
	logger   *slog.Logger
}

// New creates a server wired to the given services.
func New(videos VideoSearcher, tracks TrackSearcher, acquirer Acquirer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		videos:   videos,
		tracks:   tracks,
		acquirer: acquirer,
		router:   httprouter.New(),
		logger:   logger,
	}
	s.router.GET("/ping", s.handlePing)
	s.router.GET("/search/video", s.handleSearchVideo)
	s.router.GET("/search/track", s.handleSearchTrack)
	s.router.GET("/download", s.handleDownload)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves the API until ListenAndServe returns.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, "pong!")
}

func (s *Server) handleSearchVideo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query().Get("query")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query must be set")
		return
	}

	results, err := s.videos.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("video search failed", "query", query, "error", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []domain.VideoResult{}
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleSearchTrack(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	partial := domain.PartialTrackMetadata{
		Title:  q.Get("title"),
		Artist: q.Get("artist"),
		Album:  q.Get("album"),
	}
	if partial.Title == "" {
		s.writeError(w, http.StatusBadRequest, "title must be set")
		return
	}
	if partial.Artist == "" {
		s.writeError(w, http.StatusBadRequest, "artist must be set")
		return
	}

	tracks, err := s.tracks.Search(r.Context(), partial)
	if err != nil {
		s.logger.Error("track search failed", "title", partial.Title, "error", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if tracks == nil {
		tracks = []domain.TrackMetadata{}
	}
	s.writeJSON(w, http.StatusOK, tracks)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	req := domain.TrackAcquisition{
		VideoID:       q.Get("video_id"),
		Title:         q.Get("title"),
		Artist:        q.Get("artist"),
		Album:         q.Get("album"),
		AlbumCoverURL: q.Get("album_cover_url"),
	}
	for _, p := range []struct{ name, value string }{
		{"video_id", req.VideoID},
		{"title", req.Title},
		{"artist", req.Artist},
		{"album", req.Album},
		{"album_cover_url", req.AlbumCoverURL},
	} {
		if p.value == "" {
			s.writeError(w, http.StatusBadRequest, p.name+" must be set")
			return
		}
	}

	path, release, err := s.acquirer.Acquire(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("No video found with ID %s", req.VideoID))
			return
		}
		s.logger.Error("download failed", "video_id", req.VideoID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "download failed")
		return
	}
	defer release()

	f, err := os.Open(path)
	if err != nil {
		s.logger.Error("opening finished track", "path", path, "error", err)
		s.writeError(w, http.StatusInternalServerError, "download failed")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", req.Artist+" - "+req.Title+".mp3"))
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("streaming track interrupted", "video_id", req.VideoID, "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// The status line is already out; all we can do is log.
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
