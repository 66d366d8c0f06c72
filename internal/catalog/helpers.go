package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("catalog-service: write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// publishEvent tells subscribers (the playlist service) about catalog
// changes (best-effort).
func (s *Server) publishEvent(ctx context.Context, event map[string]any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("catalog-service: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, "catalog", string(data)).Err(); err != nil {
		log.Printf("catalog-service: publish event: %v", err)
	}
}

// rowExists reports whether a single-row lookup finds anything.
func (s *Server) rowExists(ctx context.Context, sql string, args ...any) (bool, error) {
	var id string
	err := s.db.QueryRow(ctx, sql, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
