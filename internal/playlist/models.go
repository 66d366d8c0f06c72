package playlist

import (
	"time"
)

// Playlist is the aggregate root owned by this service. It intentionally
// contains only metadata; items are modelled separately and ordered by
// Position (1-based, dense: positions of an N-item playlist are exactly 1..N).
type Playlist struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CoverImageURL string    `json:"coverImageUrl"`
	IsPublic      bool      `json:"isPublic"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Item is one song's membership record within a playlist. The song fields
// are a denormalized snapshot taken at insert time so playlist reads survive
// a catalog outage; the read path prefers live catalog data when it can get
// it.
type Item struct {
	ID                 string    `json:"id"`
	PlaylistID         string    `json:"playlistId"`
	SongID             string    `json:"songId"`
	SongTitle          string    `json:"songTitle"`
	ArtistName         string    `json:"artistName"`
	AlbumTitle         string    `json:"albumTitle"`
	AlbumCoverImageURL string    `json:"albumCoverImageUrl"`
	DurationMs         int       `json:"durationMs"`
	Position           int       `json:"position"`
	AddedAt            time.Time `json:"addedAt"`

	AudioURL string `json:"audioUrl,omitempty"` // resolved live, never stored
}

// Summary is the list/search shape: metadata plus aggregates computed from
// stored snapshots (no catalog calls).
type Summary struct {
	Playlist
	SongCount       int `json:"songCount"`
	TotalDurationMs int `json:"totalDurationMs"`
}

// Detail is the single-playlist shape with items resolved against the
// catalog.
type Detail struct {
	Playlist
	SongCount       int    `json:"songCount"`
	TotalDurationMs int    `json:"totalDurationMs"`
	Songs           []Item `json:"songs"`
}

// ItemOrder is one (item, position) assignment of a full reorder request.
type ItemOrder struct {
	ItemID   string `json:"itemId"`
	Position int    `json:"position"`
}

// Snapshot carries the denormalized song fields written onto a new item.
type Snapshot struct {
	SongTitle          string
	ArtistName         string
	AlbumTitle         string
	AlbumCoverImageURL string
	DurationMs         int
}
