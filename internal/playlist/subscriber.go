package playlist

import (
	"context"
	"encoding/json"
	"log"

	"metalify/internal/songmeta"
)

// RunCatalogSubscriber listens on the catalog's event channel and rewrites
// item snapshots when a song changes. This is the staleness policy for the
// denormalized fields: written at insert, refreshed by catalog events, and
// superseded by live resolution on reads when the catalog is reachable.
// Blocks until ctx is cancelled.
func (s *Server) RunCatalogSubscriber(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	sub := s.rdb.Subscribe(ctx, "catalog")
	defer sub.Close()

	ch := sub.Channel()
	for msg := range ch {
		var event struct {
			Type    string        `json:"type"`
			Payload songmeta.Song `json:"payload"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("playlist-service: catalog event decode: %v", err)
			continue
		}
		if event.Type != "song.updated" {
			continue
		}
		s.refreshSnapshots(ctx, event.Payload)
	}
}

func (s *Server) refreshSnapshots(ctx context.Context, song songmeta.Song) {
	tag, err := s.db.Exec(ctx, `
		UPDATE playlist_items
		SET song_title = $2,
			artist_name = $3,
			album_title = $4,
			album_cover_image_url = $5,
			duration_ms = $6
		WHERE song_id = $1
	`, song.ID, song.Title, song.BandName, song.AlbumTitle, song.AlbumCoverImageURL, song.DurationMs)
	if err != nil {
		log.Printf("playlist-service: refresh snapshots for song %s: %v", song.ID, err)
		return
	}
	if n := tag.RowsAffected(); n > 0 {
		log.Printf("playlist-service: refreshed %d snapshots for song %s", n, song.ID)
	}
}
