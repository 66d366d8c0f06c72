// Package songmeta is the HTTP client for the catalog service's song
// endpoints, used by the playlist service to resolve display metadata.
package songmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound means the catalog has no song with the requested id.
var ErrNotFound = errors.New("song not found in catalog")

// Song is the resolver shape served by GET /songs/{id}.
type Song struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	BandName           string `json:"bandName"`
	AlbumTitle         string `json:"albumTitle"`
	AlbumCoverImageURL string `json:"albumCoverImageUrl"`
	DurationMs         int    `json:"durationMs"`
	AudioURL           string `json:"audioUrl"`
}

// resolveLimit caps concurrent catalog calls during batch resolution.
const resolveLimit = 8

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) ResolveSong(ctx context.Context, songID string) (*Song, error) {
	url := fmt.Sprintf("%s/songs/%s", c.baseURL, songID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog status %d", resp.StatusCode)
	}

	var song Song
	if err := json.NewDecoder(resp.Body).Decode(&song); err != nil {
		return nil, err
	}
	return &song, nil
}

// ResolveSongs fans out lookups for the given ids, at most resolveLimit in
// flight. Individual failures are logged and dropped; the returned map holds
// only the songs the catalog answered for.
func (c *Client) ResolveSongs(ctx context.Context, songIDs []string) map[string]*Song {
	var mu sync.Mutex
	resolved := make(map[string]*Song, len(songIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)
	for _, id := range songIDs {
		id := id
		g.Go(func() error {
			song, err := c.ResolveSong(ctx, id)
			if err != nil {
				log.Printf("songmeta: resolve %s: %v", id, err)
				return nil
			}
			mu.Lock()
			resolved[id] = song
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return resolved
}
