package playlist

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"metalify/internal/songmeta"
)

// SongResolver looks up song metadata in the catalog service. Implemented by
// *songmeta.Client; tests substitute fakes.
type SongResolver interface {
	ResolveSong(ctx context.Context, songID string) (*songmeta.Song, error)
	ResolveSongs(ctx context.Context, songIDs []string) map[string]*songmeta.Song
}

type Server struct {
	db    DB
	rdb   *redis.Client
	songs SongResolver
}

func NewServer(db DB, rdb *redis.Client, songs SongResolver) *Server {
	return &Server{
		db:    db,
		rdb:   rdb,
		songs: songs,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Get("/playlists", s.handleListPlaylists)
	r.Get("/playlists/public", s.handleListPublicPlaylists)
	r.Get("/playlists/user/{userId}", s.handleListUserPlaylists)
	r.Get("/playlists/search", s.handleSearchPlaylists)

	r.Post("/playlists", s.handleCreatePlaylist)
	r.Get("/playlists/{id}", s.handleGetPlaylist)
	r.Put("/playlists/{id}", s.handleUpdatePlaylist)
	r.Delete("/playlists/{id}", s.handleDeletePlaylist)

	r.Post("/playlists/{id}/songs", s.handleAddSong)
	r.Delete("/playlists/{id}/songs/{songId}", s.handleRemoveSong)
	r.Put("/playlists/{id}/items/{itemId}/position", s.handleRepositionItem)
	r.Put("/playlists/{id}/reorder", s.handleReorderPlaylist)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "playlist-service",
	})
}
