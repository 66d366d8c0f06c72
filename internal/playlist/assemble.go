package playlist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const summaryColumns = `
	p.id, p.name, p.description, p.cover_image_url, p.is_public,
	p.created_by, p.created_at, p.updated_at,
	COUNT(i.id), COALESCE(SUM(i.duration_ms), 0)
`

const summaryGroup = `
	GROUP BY p.id, p.name, p.description, p.cover_image_url, p.is_public,
	         p.created_by, p.created_at, p.updated_at
`

// querySummaries runs a summary query; aggregates come from the stored
// snapshots so listing playlists never calls the catalog.
func (s *Server) querySummaries(ctx context.Context, sql string, args ...any) ([]Summary, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(
			&sum.ID,
			&sum.Name,
			&sum.Description,
			&sum.CoverImageURL,
			&sum.IsPublic,
			&sum.CreatedBy,
			&sum.CreatedAt,
			&sum.UpdatedAt,
			&sum.SongCount,
			&sum.TotalDurationMs,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// getDetail loads a playlist with its items in position order and resolves
// song display data against the catalog. A song the catalog cannot resolve
// keeps its stored snapshot instead of failing the read.
func (s *Server) getDetail(ctx context.Context, playlistID string) (*Detail, error) {
	var d Detail
	err := s.db.QueryRow(ctx, `
		SELECT id, name, description, cover_image_url, is_public,
		       created_by, created_at, updated_at
		FROM playlists
		WHERE id = $1
	`, playlistID).Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.CoverImageURL,
		&d.IsPublic,
		&d.CreatedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, playlist_id, song_id,
		       song_title, artist_name, album_title, album_cover_image_url, duration_ms,
		       position, added_at
		FROM playlist_items
		WHERE playlist_id = $1
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d.Songs = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID,
			&it.PlaylistID,
			&it.SongID,
			&it.SongTitle,
			&it.ArtistName,
			&it.AlbumTitle,
			&it.AlbumCoverImageURL,
			&it.DurationMs,
			&it.Position,
			&it.AddedAt,
		); err != nil {
			return nil, err
		}
		d.Songs = append(d.Songs, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.songs != nil && len(d.Songs) > 0 {
		ids := make([]string, 0, len(d.Songs))
		seen := map[string]bool{}
		for _, it := range d.Songs {
			if !seen[it.SongID] {
				seen[it.SongID] = true
				ids = append(ids, it.SongID)
			}
		}
		resolved := s.songs.ResolveSongs(ctx, ids)
		for i := range d.Songs {
			song, ok := resolved[d.Songs[i].SongID]
			if !ok {
				continue
			}
			d.Songs[i].SongTitle = song.Title
			d.Songs[i].ArtistName = song.BandName
			d.Songs[i].AlbumTitle = song.AlbumTitle
			d.Songs[i].AlbumCoverImageURL = song.AlbumCoverImageURL
			d.Songs[i].DurationMs = song.DurationMs
			d.Songs[i].AudioURL = song.AudioURL
		}
	}

	d.SongCount = len(d.Songs)
	for _, it := range d.Songs {
		d.TotalDurationMs += it.DurationMs
	}
	return &d, nil
}
