package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Event is the envelope every message on the wire carries. The publishing
// services use dotted types: playlist.created, playlist.song_added,
// playlist.reordered, song.updated and so on.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Server struct {
	hub           *Hub
	rdb           *redis.Client
	ctx           context.Context
	allowedOrigin string
	upgrader      websocket.Upgrader
}

func NewServer(hub *Hub, rdb *redis.Client, ctx context.Context, allowedOrigin string) *Server {
	s := &Server{
		hub:           hub,
		rdb:           rdb,
		ctx:           ctx,
		allowedOrigin: allowedOrigin,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// checkOrigin admits non-browser clients (no Origin header) always; browser
// connections must come from the configured origin when one is set.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.allowedOrigin == "" {
		return true
	}
	return origin == s.allowedOrigin
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	r.Post("/events", s.handleEvents)

	return r
}

// RunRedisSubscriber pipes the "broadcast" channel into the hub. Messages
// that do not parse as typed events are dropped, not forwarded.
func (s *Server) RunRedisSubscriber() {
	sub := s.rdb.Subscribe(s.ctx, "broadcast")
	defer sub.Close()

	for msg := range sub.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil || ev.Type == "" {
			log.Printf("realtime-service: dropping malformed event: %.80s", msg.Payload)
			continue
		}
		s.hub.Broadcast([]byte(msg.Payload))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "realtime-service",
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime-service: ws upgrade: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register <- client

	now, _ := json.Marshal(map[string]string{
		"now": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if b, err := json.Marshal(Event{Type: "welcome", Payload: now}); err == nil {
		client.send <- b
	}

	go client.writePump()
	go client.readPump()
}

// handleEvents lets services without a Redis connection inject an event.
// The body must be a typed envelope; untyped blobs are rejected.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if ev.Type == "" {
		http.Error(w, "event type is required", http.StatusBadRequest)
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	if err := s.rdb.Publish(s.ctx, "broadcast", string(data)).Err(); err != nil {
		http.Error(w, "redis error", http.StatusInternalServerError)
		log.Printf("realtime-service: publish error: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("realtime-service: write json: %v", err)
	}
}
