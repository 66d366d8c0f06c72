package playlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// The ordering engine keeps every playlist's positions dense: an N-item
// playlist always occupies exactly {1..N}. Each operation runs as a single
// transaction and starts by locking the playlists row, which serializes
// mutations of the same playlist and doubles as the existence check.

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateSong   = errors.New("song already in playlist")
	ErrInvalidPosition = errors.New("invalid position")
)

// lockPlaylist takes the row lock on the parent playlist.
// Returns ErrNotFound if the playlist does not exist.
func lockPlaylist(ctx context.Context, tx pgx.Tx, playlistID string) error {
	var id string
	err := tx.QueryRow(ctx, `
		SELECT id FROM playlists WHERE id = $1 FOR UPDATE
	`, playlistID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func touchPlaylist(ctx context.Context, tx pgx.Tx, playlistID string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE playlists SET updated_at = $2 WHERE id = $1
	`, playlistID, now)
	return err
}

// insertSong adds a song to a playlist. When position is nil the item is
// appended; otherwise the requested position is clamped to [1, N+1] and
// every item at or after it is shifted up by one before the write.
func (s *Server) insertSong(ctx context.Context, playlistID, songID string, position *int, snap Snapshot) (*Item, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := lockPlaylist(ctx, tx, playlistID); err != nil {
		return nil, err
	}

	var existing string
	err = tx.QueryRow(ctx, `
		SELECT id FROM playlist_items WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID).Scan(&existing)
	if err == nil {
		return nil, ErrDuplicateSong
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var total int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM playlist_items WHERE playlist_id = $1
	`, playlistID).Scan(&total); err != nil {
		return nil, err
	}

	pos := total + 1
	if position != nil {
		pos = *position
		if pos < 1 {
			pos = 1
		}
		if pos > total+1 {
			pos = total + 1
		}
	}

	if pos <= total {
		if _, err := tx.Exec(ctx, `
			UPDATE playlist_items
			SET position = position + 1
			WHERE playlist_id = $1 AND position >= $2
		`, playlistID, pos); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	item := Item{
		ID:                 uuid.NewString(),
		PlaylistID:         playlistID,
		SongID:             songID,
		SongTitle:          snap.SongTitle,
		ArtistName:         snap.ArtistName,
		AlbumTitle:         snap.AlbumTitle,
		AlbumCoverImageURL: snap.AlbumCoverImageURL,
		DurationMs:         snap.DurationMs,
		Position:           pos,
		AddedAt:            now,
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO playlist_items (
			id, playlist_id, song_id,
			song_title, artist_name, album_title, album_cover_image_url, duration_ms,
			position, added_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		item.ID, item.PlaylistID, item.SongID,
		item.SongTitle, item.ArtistName, item.AlbumTitle, item.AlbumCoverImageURL, item.DurationMs,
		item.Position, item.AddedAt,
	); err != nil {
		return nil, err
	}

	if err := touchPlaylist(ctx, tx, playlistID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &item, nil
}

// removeSong deletes the (playlist, song) item and closes the gap it leaves.
func (s *Server) removeSong(ctx context.Context, playlistID, songID string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}

	var itemID string
	var pos int
	err = tx.QueryRow(ctx, `
		SELECT id, position FROM playlist_items
		WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID).Scan(&itemID, &pos)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM playlist_items WHERE id = $1
	`, itemID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE playlist_items
		SET position = position - 1
		WHERE playlist_id = $1 AND position > $2
	`, playlistID, pos); err != nil {
		return err
	}

	if err := touchPlaylist(ctx, tx, playlistID, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// repositionItem moves one item to newPos within [1, N], shifting the items
// between the old and new position by one. Moving an item onto its current
// position is a no-op.
func (s *Server) repositionItem(ctx context.Context, playlistID, itemID string, newPos int) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}

	var currentPos int
	err = tx.QueryRow(ctx, `
		SELECT position FROM playlist_items
		WHERE id = $1 AND playlist_id = $2
	`, itemID, playlistID).Scan(&currentPos)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var total int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM playlist_items WHERE playlist_id = $1
	`, playlistID).Scan(&total); err != nil {
		return err
	}

	if newPos < 1 || newPos > total {
		return ErrInvalidPosition
	}
	if newPos == currentPos {
		return tx.Commit(ctx)
	}

	if newPos > currentPos {
		_, err = tx.Exec(ctx, `
			UPDATE playlist_items
			SET position = position - 1
			WHERE playlist_id = $1
			  AND position > $2
			  AND position <= $3
		`, playlistID, currentPos, newPos)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE playlist_items
			SET position = position + 1
			WHERE playlist_id = $1
			  AND position >= $3
			  AND position < $2
		`, playlistID, currentPos, newPos)
	}
	if err != nil {
		return err
	}

	// Set the moved item last, after the shift, so no two rows ever hold the
	// same position inside the transaction.
	if _, err := tx.Exec(ctx, `
		UPDATE playlist_items
		SET position = $3
		WHERE id = $2 AND playlist_id = $1
	`, playlistID, itemID, newPos); err != nil {
		return err
	}

	if err := touchPlaylist(ctx, tx, playlistID, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// reorderPlaylist applies a full permutation in one pass. The submitted
// assignments must cover every item of the playlist exactly once with
// positions forming exactly 1..N; anything else is rejected before a single
// row is written.
func (s *Server) reorderPlaylist(ctx context.Context, playlistID string, assignments []ItemOrder) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `
		SELECT id FROM playlist_items WHERE playlist_id = $1
	`, playlistID)
	if err != nil {
		return err
	}
	itemIDs := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		itemIDs[id] = false
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if err := validatePermutation(itemIDs, assignments); err != nil {
		return err
	}

	for _, a := range assignments {
		if _, err := tx.Exec(ctx, `
			UPDATE playlist_items
			SET position = $3
			WHERE id = $2 AND playlist_id = $1
		`, playlistID, a.ItemID, a.Position); err != nil {
			return err
		}
	}

	if err := touchPlaylist(ctx, tx, playlistID, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// validatePermutation checks that assignments hit every item of the playlist
// exactly once and that their positions are exactly 1..N.
func validatePermutation(itemIDs map[string]bool, assignments []ItemOrder) error {
	if len(assignments) != len(itemIDs) {
		return fmt.Errorf("%w: got %d assignments for %d items", ErrInvalidPosition, len(assignments), len(itemIDs))
	}
	seen := make([]bool, len(assignments)+1)
	for _, a := range assignments {
		used, ok := itemIDs[a.ItemID]
		if !ok {
			return fmt.Errorf("%w: unknown item %s", ErrInvalidPosition, a.ItemID)
		}
		if used {
			return fmt.Errorf("%w: item %s assigned twice", ErrInvalidPosition, a.ItemID)
		}
		itemIDs[a.ItemID] = true
		if a.Position < 1 || a.Position > len(assignments) {
			return fmt.Errorf("%w: position %d out of range", ErrInvalidPosition, a.Position)
		}
		if seen[a.Position] {
			return fmt.Errorf("%w: position %d assigned twice", ErrInvalidPosition, a.Position)
		}
		seen[a.Position] = true
	}
	return nil
}
