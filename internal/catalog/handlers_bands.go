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

const bandColumns = `
	id, name, country, status, formed_year, genre, themes, label,
	logo_url, photo_url, biography, created_at, updated_at
`

func scanBand(row pgx.Row) (Band, error) {
	var b Band
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Country,
		&b.Status,
		&b.FormedYear,
		&b.Genre,
		&b.Themes,
		&b.Label,
		&b.LogoURL,
		&b.PhotoURL,
		&b.Biography,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func (s *Server) queryBands(w http.ResponseWriter, r *http.Request, sql string, args ...any) {
	rows, err := s.db.Query(r.Context(), sql, args...)
	if err != nil {
		log.Printf("catalog-service: list bands: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	bands := []Band{}
	for rows.Next() {
		b, err := scanBand(rows)
		if err != nil {
			log.Printf("catalog-service: list bands scan: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		bands = append(bands, b)
	}
	if err := rows.Err(); err != nil {
		log.Printf("catalog-service: list bands rows: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, bands)
}

func (s *Server) handleListBands(w http.ResponseWriter, r *http.Request) {
	s.queryBands(w, r, `
		SELECT `+bandColumns+` FROM bands ORDER BY name ASC LIMIT 500
	`)
}

func (s *Server) handleSearchBands(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing search term")
		return
	}
	s.queryBands(w, r, `
		SELECT `+bandColumns+` FROM bands
		WHERE name ILIKE '%' || $1 || '%' OR genre ILIKE '%' || $1 || '%'
		ORDER BY name ASC
		LIMIT 200
	`, term)
}

type bandBody struct {
	Name       string `json:"name"`
	Country    string `json:"country"`
	Status     string `json:"status"`
	FormedYear int    `json:"formedYear"`
	Genre      string `json:"genre"`
	Themes     string `json:"themes"`
	Label      string `json:"label"`
	LogoURL    string `json:"logoUrl"`
	PhotoURL   string `json:"photoUrl"`
	Biography  string `json:"biography"`
}

func (s *Server) handleCreateBand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body bandBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || len(body.Name) > 200 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}

	now := time.Now().UTC()
	b := Band{
		ID:         uuid.NewString(),
		Name:       body.Name,
		Country:    body.Country,
		Status:     body.Status,
		FormedYear: body.FormedYear,
		Genre:      body.Genre,
		Themes:     body.Themes,
		Label:      body.Label,
		LogoURL:    body.LogoURL,
		PhotoURL:   body.PhotoURL,
		Biography:  body.Biography,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO bands (`+bandColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, b.ID, b.Name, b.Country, b.Status, b.FormedYear, b.Genre, b.Themes, b.Label,
		b.LogoURL, b.PhotoURL, b.Biography, b.CreatedAt, b.UpdatedAt); err != nil {
		log.Printf("catalog-service: create band: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{"type": "band.created", "payload": b})
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleGetBand(w http.ResponseWriter, r *http.Request) {
	bandID := chi.URLParam(r, "id")
	b, err := scanBand(s.db.QueryRow(r.Context(), `
		SELECT `+bandColumns+` FROM bands WHERE id = $1
	`, bandID))
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "band not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: get band: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bandID := chi.URLParam(r, "id")

	var body bandBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || len(body.Name) > 200 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}

	now := time.Now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE bands
		SET name = $2, country = $3, status = $4, formed_year = $5, genre = $6,
			themes = $7, label = $8, logo_url = $9, photo_url = $10,
			biography = $11, updated_at = $12
		WHERE id = $1
	`, bandID, body.Name, body.Country, body.Status, body.FormedYear, body.Genre,
		body.Themes, body.Label, body.LogoURL, body.PhotoURL, body.Biography, now)
	if err != nil {
		log.Printf("catalog-service: update band: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "band not found")
		return
	}

	b, err := scanBand(s.db.QueryRow(ctx, `
		SELECT `+bandColumns+` FROM bands WHERE id = $1
	`, bandID))
	if err != nil {
		log.Printf("catalog-service: update band reload: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{"type": "band.updated", "payload": b})
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bandID := chi.URLParam(r, "id")

	tag, err := s.db.Exec(ctx, `DELETE FROM bands WHERE id = $1`, bandID)
	if err != nil {
		log.Printf("catalog-service: delete band: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "band not found")
		return
	}

	s.publishEvent(ctx, map[string]any{"type": "band.deleted", "payload": map[string]any{"bandId": bandID}})
	w.WriteHeader(http.StatusNoContent)
}
