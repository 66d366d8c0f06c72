package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"metalify/internal/realtime"
)

func main() {
	ctx := context.Background()

	port := getenv("PORT", "3003")
	redisURL := getenv("REDIS_URL", "redis://localhost:6379")
	allowedOrigin := getenv("ALLOWED_ORIGIN", "")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("realtime-service: invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	hub := realtime.NewHub()
	srv := realtime.NewServer(hub, rdb, ctx, allowedOrigin)

	go hub.Run()
	go srv.RunRedisSubscriber()

	r := srv.Router(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	log.Printf("realtime-service listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("realtime-service: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
