package playlist

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"metalify/internal/songmeta"
)

// handleAddSong inserts a song into a playlist. The song must exist in the
// catalog; its metadata at this moment becomes the item's snapshot.
func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	var body struct {
		SongID   string `json:"songId"`
		Position *int   `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.SongID == "" {
		writeError(w, http.StatusBadRequest, "songId is required")
		return
	}

	song, err := s.songs.ResolveSong(ctx, body.SongID)
	if errors.Is(err, songmeta.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "song not found in catalog")
		return
	}
	if err != nil {
		log.Printf("playlist-service: add song resolve: %v", err)
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}

	item, err := s.insertSong(ctx, playlistID, body.SongID, body.Position, Snapshot{
		SongTitle:          song.Title,
		ArtistName:         song.BandName,
		AlbumTitle:         song.AlbumTitle,
		AlbumCoverImageURL: song.AlbumCoverImageURL,
		DurationMs:         song.DurationMs,
	})
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if errors.Is(err, ErrDuplicateSong) {
		writeError(w, http.StatusConflict, "song already in playlist")
		return
	}
	if err != nil {
		log.Printf("playlist-service: add song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type": "playlist.song_added",
		"payload": map[string]any{
			"playlistId": playlistID,
			"item":       item,
		},
	})

	detail, err := s.getDetail(ctx, playlistID)
	if err != nil {
		log.Printf("playlist-service: add song reload: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")
	songID := chi.URLParam(r, "songId")

	err := s.removeSong(ctx, playlistID, songID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "song not in playlist")
		return
	}
	if err != nil {
		log.Printf("playlist-service: remove song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type": "playlist.song_removed",
		"payload": map[string]any{
			"playlistId": playlistID,
			"songId":     songID,
		},
	})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRepositionItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")

	var body struct {
		Position int `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.repositionItem(ctx, playlistID, itemID, body.Position)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist or item not found")
		return
	}
	if errors.Is(err, ErrInvalidPosition) {
		writeError(w, http.StatusBadRequest, "position out of range")
		return
	}
	if err != nil {
		log.Printf("playlist-service: reposition item: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type": "playlist.reordered",
		"payload": map[string]any{
			"playlistId": playlistID,
			"itemId":     itemID,
			"position":   body.Position,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"itemId":   itemID,
		"position": body.Position,
	})
}

func (s *Server) handleReorderPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	var body struct {
		Items []ItemOrder `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.reorderPlaylist(ctx, playlistID, body.Items)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if errors.Is(err, ErrInvalidPosition) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("playlist-service: reorder playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type": "playlist.reordered",
		"payload": map[string]any{
			"playlistId": playlistID,
		},
	})

	detail, err := s.getDetail(ctx, playlistID)
	if err != nil {
		log.Printf("playlist-service: reorder reload: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
