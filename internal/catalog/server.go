package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// DB defines the database operations the service needs.
// It is implemented by *pgxpool.Pool and can be mocked for testing.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Server struct {
	db  DB
	rdb *redis.Client
}

func NewServer(db DB, rdb *redis.Client) *Server {
	return &Server{
		db:  db,
		rdb: rdb,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Get("/bands", s.handleListBands)
	r.Get("/bands/search", s.handleSearchBands)
	r.Post("/bands", s.handleCreateBand)
	r.Get("/bands/{id}", s.handleGetBand)
	r.Put("/bands/{id}", s.handleUpdateBand)
	r.Delete("/bands/{id}", s.handleDeleteBand)
	r.Get("/bands/{id}/albums", s.handleListBandAlbums)

	r.Post("/albums", s.handleCreateAlbum)
	r.Get("/albums/{id}", s.handleGetAlbum)
	r.Put("/albums/{id}", s.handleUpdateAlbum)
	r.Delete("/albums/{id}", s.handleDeleteAlbum)
	r.Get("/albums/{id}/songs", s.handleListAlbumSongs)

	r.Get("/songs/search", s.handleSearchSongs)
	r.Post("/songs", s.handleCreateSong)
	r.Get("/songs/{id}", s.handleGetSong)
	r.Put("/songs/{id}", s.handleUpdateSong)
	r.Delete("/songs/{id}", s.handleDeleteSong)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "catalog-service",
	})
}
