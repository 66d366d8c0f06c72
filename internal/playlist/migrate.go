package playlist

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlists (
          id              uuid PRIMARY KEY,
          name            TEXT NOT NULL,
          description     TEXT NOT NULL DEFAULT '',
          cover_image_url TEXT NOT NULL DEFAULT '',
          is_public       BOOLEAN NOT NULL DEFAULT TRUE,
          created_by      TEXT NOT NULL,
          created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlist_items (
          id                    uuid PRIMARY KEY,
          playlist_id           uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          song_id               uuid NOT NULL,
          song_title            TEXT NOT NULL DEFAULT '',
          artist_name           TEXT NOT NULL DEFAULT '',
          album_title           TEXT NOT NULL DEFAULT '',
          album_cover_image_url TEXT NOT NULL DEFAULT '',
          duration_ms           INT NOT NULL DEFAULT 0,
          position              INT NOT NULL,
          added_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
          UNIQUE (playlist_id, song_id)
      )
    `); err != nil {
		return err
	}

	// Plain index on purpose. A unique index over (playlist_id, position)
	// would reject the position+1 shift statements, Postgres checks per row.
	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_playlist_items_position
      ON playlist_items (playlist_id, position)
    `); err != nil {
		return err
	}

	return nil
}
