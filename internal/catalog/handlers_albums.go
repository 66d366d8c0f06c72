package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const albumColumns = `
	id, band_id, title, album_type, release_year, cover_image_url, label,
	total_duration_ms, created_at, updated_at
`

func scanAlbum(row pgx.Row) (Album, error) {
	var a Album
	err := row.Scan(
		&a.ID,
		&a.BandID,
		&a.Title,
		&a.AlbumType,
		&a.ReleaseYear,
		&a.CoverImageURL,
		&a.Label,
		&a.TotalDurationMs,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (s *Server) handleListBandAlbums(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bandID := chi.URLParam(r, "id")

	exists, err := s.rowExists(ctx, `SELECT id FROM bands WHERE id = $1`, bandID)
	if err != nil {
		log.Printf("catalog-service: list band albums check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "band not found")
		return
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+albumColumns+` FROM albums
		WHERE band_id = $1
		ORDER BY release_year ASC, title ASC
	`, bandID)
	if err != nil {
		log.Printf("catalog-service: list band albums: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	albums := []Album{}
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			log.Printf("catalog-service: list band albums scan: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		log.Printf("catalog-service: list band albums rows: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

type albumBody struct {
	BandID          string `json:"bandId"`
	Title           string `json:"title"`
	AlbumType       string `json:"albumType"`
	ReleaseYear     int    `json:"releaseYear"`
	CoverImageURL   string `json:"coverImageUrl"`
	Label           string `json:"label"`
	TotalDurationMs int    `json:"totalDurationMs"`
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body albumBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" || len(body.Title) > 200 {
		writeError(w, http.StatusBadRequest, "title must be between 1 and 200 characters")
		return
	}
	if body.BandID == "" {
		writeError(w, http.StatusBadRequest, "bandId is required")
		return
	}

	exists, err := s.rowExists(ctx, `SELECT id FROM bands WHERE id = $1`, body.BandID)
	if err != nil {
		log.Printf("catalog-service: create album band check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !exists {
		writeError(w, http.StatusBadRequest, "band does not exist")
		return
	}

	now := time.Now().UTC()
	a := Album{
		ID:              uuid.NewString(),
		BandID:          body.BandID,
		Title:           body.Title,
		AlbumType:       body.AlbumType,
		ReleaseYear:     body.ReleaseYear,
		CoverImageURL:   body.CoverImageURL,
		Label:           body.Label,
		TotalDurationMs: body.TotalDurationMs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO albums (`+albumColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.BandID, a.Title, a.AlbumType, a.ReleaseYear, a.CoverImageURL,
		a.Label, a.TotalDurationMs, a.CreatedAt, a.UpdatedAt); err != nil {
		log.Printf("catalog-service: create album: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{"type": "album.created", "payload": a})
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "id")
	a, err := scanAlbum(s.db.QueryRow(r.Context(), `
		SELECT `+albumColumns+` FROM albums WHERE id = $1
	`, albumID))
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: get album: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	albumID := chi.URLParam(r, "id")

	var body albumBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" || len(body.Title) > 200 {
		writeError(w, http.StatusBadRequest, "title must be between 1 and 200 characters")
		return
	}

	now := time.Now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE albums
		SET title = $2, album_type = $3, release_year = $4, cover_image_url = $5,
			label = $6, total_duration_ms = $7, updated_at = $8
		WHERE id = $1
	`, albumID, body.Title, body.AlbumType, body.ReleaseYear, body.CoverImageURL,
		body.Label, body.TotalDurationMs, now)
	if err != nil {
		log.Printf("catalog-service: update album: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}

	a, err := scanAlbum(s.db.QueryRow(ctx, `
		SELECT `+albumColumns+` FROM albums WHERE id = $1
	`, albumID))
	if err != nil {
		log.Printf("catalog-service: update album reload: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{"type": "album.updated", "payload": a})
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	albumID := chi.URLParam(r, "id")

	tag, err := s.db.Exec(ctx, `DELETE FROM albums WHERE id = $1`, albumID)
	if err != nil {
		log.Printf("catalog-service: delete album: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}

	s.publishEvent(ctx, map[string]any{"type": "album.deleted", "payload": map[string]any{"albumId": albumID}})
	w.WriteHeader(http.StatusNoContent)
}
