package playlist

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

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.querySummaries(r.Context(), `
		SELECT `+summaryColumns+`
		FROM playlists p
		LEFT JOIN playlist_items i ON i.playlist_id = p.id
		`+summaryGroup+`
		ORDER BY p.name ASC
		LIMIT 200
	`)
	if err != nil {
		log.Printf("playlist-service: list playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleListPublicPlaylists(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.querySummaries(r.Context(), `
		SELECT `+summaryColumns+`
		FROM playlists p
		LEFT JOIN playlist_items i ON i.playlist_id = p.id
		WHERE p.is_public = TRUE
		`+summaryGroup+`
		ORDER BY p.created_at DESC
		LIMIT 200
	`)
	if err != nil {
		log.Printf("playlist-service: list public playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleListUserPlaylists(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	summaries, err := s.querySummaries(r.Context(), `
		SELECT `+summaryColumns+`
		FROM playlists p
		LEFT JOIN playlist_items i ON i.playlist_id = p.id
		WHERE p.created_by = $1
		`+summaryGroup+`
		ORDER BY p.updated_at DESC
	`, userID)
	if err != nil {
		log.Printf("playlist-service: list user playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleSearchPlaylists(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing search term")
		return
	}
	summaries, err := s.querySummaries(r.Context(), `
		SELECT `+summaryColumns+`
		FROM playlists p
		LEFT JOIN playlist_items i ON i.playlist_id = p.id
		WHERE p.name ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%'
		`+summaryGroup+`
		ORDER BY p.name ASC
		LIMIT 200
	`, term)
	if err != nil {
		log.Printf("playlist-service: search playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleCreatePlaylist creates an empty playlist.
func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		CoverImageURL string `json:"coverImageUrl"`
		IsPublic      *bool  `json:"isPublic"`
		CreatedBy     string `json:"createdBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)
	body.CreatedBy = strings.TrimSpace(body.CreatedBy)

	if body.Name == "" || len(body.Name) > 200 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}
	if len(body.Description) > 1000 {
		writeError(w, http.StatusBadRequest, "description is too long")
		return
	}
	if body.CreatedBy == "" {
		writeError(w, http.StatusBadRequest, "createdBy is required")
		return
	}

	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	now := time.Now().UTC()
	pl := Playlist{
		ID:            uuid.NewString(),
		Name:          body.Name,
		Description:   body.Description,
		CoverImageURL: body.CoverImageURL,
		IsPublic:      isPublic,
		CreatedBy:     body.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO playlists (id, name, description, cover_image_url, is_public, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, pl.ID, pl.Name, pl.Description, pl.CoverImageURL, pl.IsPublic, pl.CreatedBy, pl.CreatedAt, pl.UpdatedAt)
	if err != nil {
		log.Printf("playlist-service: create playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "playlist.created",
		"payload": map[string]any{"playlist": pl},
	})

	writeJSON(w, http.StatusCreated, Detail{Playlist: pl, Songs: []Item{}})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(playlistID); err != nil {
		// A malformed id cannot match any row; skip the round trip.
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	detail, err := s.getDetail(r.Context(), playlistID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist-service: get playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleUpdatePlaylist updates playlist metadata; absent fields are left
// untouched.
func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	var body struct {
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		CoverImageURL *string `json:"coverImageUrl"`
		IsPublic      *bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("playlist-service: update playlist begin tx: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var existing Playlist
	err = tx.QueryRow(ctx, `
		SELECT id, name, description, cover_image_url, is_public, created_by, created_at, updated_at
		FROM playlists
		WHERE id = $1
		FOR UPDATE
	`, playlistID).Scan(
		&existing.ID,
		&existing.Name,
		&existing.Description,
		&existing.CoverImageURL,
		&existing.IsPublic,
		&existing.CreatedBy,
		&existing.CreatedAt,
		&existing.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist-service: update playlist fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" || len(name) > 200 {
			writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
			return
		}
		existing.Name = name
	}
	if body.Description != nil {
		desc := strings.TrimSpace(*body.Description)
		if len(desc) > 1000 {
			writeError(w, http.StatusBadRequest, "description is too long")
			return
		}
		existing.Description = desc
	}
	if body.CoverImageURL != nil {
		existing.CoverImageURL = strings.TrimSpace(*body.CoverImageURL)
	}
	if body.IsPublic != nil {
		existing.IsPublic = *body.IsPublic
	}
	existing.UpdatedAt = time.Now().UTC()

	if _, err := tx.Exec(ctx, `
		UPDATE playlists
		SET name = $2,
			description = $3,
			cover_image_url = $4,
			is_public = $5,
			updated_at = $6
		WHERE id = $1
	`, existing.ID, existing.Name, existing.Description, existing.CoverImageURL, existing.IsPublic, existing.UpdatedAt); err != nil {
		log.Printf("playlist-service: update playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("playlist-service: update playlist commit: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "playlist.updated",
		"payload": map[string]any{"playlist": existing},
	})

	writeJSON(w, http.StatusOK, existing)
}

// handleDeletePlaylist removes the playlist; items go with it via the
// cascading FK.
func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	tag, err := s.db.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, playlistID)
	if err != nil {
		log.Printf("playlist-service: delete playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "playlist.deleted",
		"payload": map[string]any{"playlistId": playlistID},
	})

	w.WriteHeader(http.StatusNoContent)
}
