package catalog

import (
	"time"
)

// Band is the canonical artist entity. The catalog is the single owner of
// band/album/song data; other services keep at most denormalized snapshots.
type Band struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Country    string    `json:"country"`
	Status     string    `json:"status"`
	FormedYear int       `json:"formedYear"`
	Genre      string    `json:"genre"`
	Themes     string    `json:"themes"`
	Label      string    `json:"label"`
	LogoURL    string    `json:"logoUrl"`
	PhotoURL   string    `json:"photoUrl"`
	Biography  string    `json:"biography"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Album struct {
	ID              string    `json:"id"`
	BandID          string    `json:"bandId"`
	Title           string    `json:"title"`
	AlbumType       string    `json:"albumType"`
	ReleaseYear     int       `json:"releaseYear"`
	CoverImageURL   string    `json:"coverImageUrl"`
	Label           string    `json:"label"`
	TotalDurationMs int       `json:"totalDurationMs"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Song struct {
	ID          string    `json:"id"`
	AlbumID     string    `json:"albumId"`
	BandID      string    `json:"bandId"`
	Title       string    `json:"title"`
	TrackNumber int       `json:"trackNumber"`
	DurationMs  int       `json:"durationMs"`
	AudioURL    string    `json:"audioUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SongDetail is the resolver shape consumed by the playlist service: the
// song joined with its album and band display fields.
type SongDetail struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	TrackNumber        int    `json:"trackNumber"`
	BandID             string `json:"bandId"`
	BandName           string `json:"bandName"`
	AlbumID            string `json:"albumId"`
	AlbumTitle         string `json:"albumTitle"`
	AlbumCoverImageURL string `json:"albumCoverImageUrl"`
	DurationMs         int    `json:"durationMs"`
	AudioURL           string `json:"audioUrl"`
}
