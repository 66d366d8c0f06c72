package catalog

import (
	"context"
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

// songDetailQuery joins a song with its album and band so consumers get the
// full display shape in one round trip.
const songDetailQuery = `
	SELECT s.id, s.title, s.track_number,
	       b.id, b.name,
	       a.id, a.title, a.cover_image_url,
	       s.duration_ms, s.audio_url
	FROM songs s
	JOIN albums a ON a.id = s.album_id
	JOIN bands b ON b.id = s.band_id
`

func scanSongDetail(row pgx.Row) (SongDetail, error) {
	var d SongDetail
	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.TrackNumber,
		&d.BandID,
		&d.BandName,
		&d.AlbumID,
		&d.AlbumTitle,
		&d.AlbumCoverImageURL,
		&d.DurationMs,
		&d.AudioURL,
	)
	return d, err
}

func (s *Server) querySongDetails(w http.ResponseWriter, r *http.Request, sql string, args ...any) {
	rows, err := s.db.Query(r.Context(), sql, args...)
	if err != nil {
		log.Printf("catalog-service: list songs: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	songs := []SongDetail{}
	for rows.Next() {
		d, err := scanSongDetail(rows)
		if err != nil {
			log.Printf("catalog-service: list songs scan: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		songs = append(songs, d)
	}
	if err := rows.Err(); err != nil {
		log.Printf("catalog-service: list songs rows: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) handleListAlbumSongs(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "id")

	exists, err := s.rowExists(r.Context(), `SELECT id FROM albums WHERE id = $1`, albumID)
	if err != nil {
		log.Printf("catalog-service: list album songs check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}

	s.querySongDetails(w, r, songDetailQuery+`
		WHERE s.album_id = $1
		ORDER BY s.track_number ASC
	`, albumID)
}

func (s *Server) handleSearchSongs(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing search term")
		return
	}
	s.querySongDetails(w, r, songDetailQuery+`
		WHERE s.title ILIKE '%' || $1 || '%' OR b.name ILIKE '%' || $1 || '%'
		ORDER BY s.title ASC
		LIMIT 200
	`, term)
}

type songBody struct {
	AlbumID     string `json:"albumId"`
	Title       string `json:"title"`
	TrackNumber int    `json:"trackNumber"`
	DurationMs  int    `json:"durationMs"`
	AudioURL    string `json:"audioUrl"`
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body songBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" || len(body.Title) > 200 {
		writeError(w, http.StatusBadRequest, "title must be between 1 and 200 characters")
		return
	}
	if body.AlbumID == "" {
		writeError(w, http.StatusBadRequest, "albumId is required")
		return
	}

	// Songs inherit the band from their album.
	var bandID string
	err := s.db.QueryRow(ctx, `SELECT band_id FROM albums WHERE id = $1`, body.AlbumID).Scan(&bandID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusBadRequest, "album does not exist")
		return
	}
	if err != nil {
		log.Printf("catalog-service: create song album check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	now := time.Now().UTC()
	song := Song{
		ID:          uuid.NewString(),
		AlbumID:     body.AlbumID,
		BandID:      bandID,
		Title:       body.Title,
		TrackNumber: body.TrackNumber,
		DurationMs:  body.DurationMs,
		AudioURL:    body.AudioURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO songs (id, album_id, band_id, title, track_number, duration_ms, audio_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, song.ID, song.AlbumID, song.BandID, song.Title, song.TrackNumber,
		song.DurationMs, song.AudioURL, song.CreatedAt, song.UpdatedAt); err != nil {
		log.Printf("catalog-service: create song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishSongEvent(ctx, "song.created", song.ID)
	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	songID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(songID); err != nil {
		// A malformed id cannot match any row; skip the round trip.
		writeError(w, http.StatusNotFound, "song not found")
		return
	}

	d, err := scanSongDetail(s.db.QueryRow(r.Context(), songDetailQuery+`
		WHERE s.id = $1
	`, songID))
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: get song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	songID := chi.URLParam(r, "id")

	var body songBody
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
		UPDATE songs
		SET title = $2, track_number = $3, duration_ms = $4, audio_url = $5, updated_at = $6
		WHERE id = $1
	`, songID, body.Title, body.TrackNumber, body.DurationMs, body.AudioURL, now)
	if err != nil {
		log.Printf("catalog-service: update song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}

	d, err := scanSongDetail(s.db.QueryRow(ctx, songDetailQuery+`
		WHERE s.id = $1
	`, songID))
	if err != nil {
		log.Printf("catalog-service: update song reload: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	// Snapshot holders key off this event.
	s.publishEvent(ctx, map[string]any{"type": "song.updated", "payload": d})
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	songID := chi.URLParam(r, "id")

	tag, err := s.db.Exec(ctx, `DELETE FROM songs WHERE id = $1`, songID)
	if err != nil {
		log.Printf("catalog-service: delete song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}

	s.publishEvent(ctx, map[string]any{"type": "song.deleted", "payload": map[string]any{"songId": songID}})
	w.WriteHeader(http.StatusNoContent)
}

// publishSongEvent publishes the joined detail shape for the given song.
func (s *Server) publishSongEvent(ctx context.Context, eventType, songID string) {
	d, err := scanSongDetail(s.db.QueryRow(ctx, songDetailQuery+`
		WHERE s.id = $1
	`, songID))
	if err != nil {
		log.Printf("catalog-service: load song for event: %v", err)
		return
	}
	s.publishEvent(ctx, map[string]any{"type": eventType, "payload": d})
}
