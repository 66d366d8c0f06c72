package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS bands (
          id          uuid PRIMARY KEY,
          name        TEXT NOT NULL,
          country     TEXT NOT NULL DEFAULT '',
          status      TEXT NOT NULL DEFAULT '',
          formed_year INT NOT NULL DEFAULT 0,
          genre       TEXT NOT NULL DEFAULT '',
          themes      TEXT NOT NULL DEFAULT '',
          label       TEXT NOT NULL DEFAULT '',
          logo_url    TEXT NOT NULL DEFAULT '',
          photo_url   TEXT NOT NULL DEFAULT '',
          biography   TEXT NOT NULL DEFAULT '',
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS albums (
          id                uuid PRIMARY KEY,
          band_id           uuid NOT NULL REFERENCES bands(id) ON DELETE CASCADE,
          title             TEXT NOT NULL,
          album_type        TEXT NOT NULL DEFAULT '',
          release_year      INT NOT NULL DEFAULT 0,
          cover_image_url   TEXT NOT NULL DEFAULT '',
          label             TEXT NOT NULL DEFAULT '',
          total_duration_ms INT NOT NULL DEFAULT 0,
          created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS songs (
          id           uuid PRIMARY KEY,
          album_id     uuid NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
          band_id      uuid NOT NULL REFERENCES bands(id) ON DELETE CASCADE,
          title        TEXT NOT NULL,
          track_number INT NOT NULL DEFAULT 0,
          duration_ms  INT NOT NULL DEFAULT 0,
          audio_url    TEXT NOT NULL DEFAULT '',
          created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_albums_band ON albums (band_id)
    `); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_songs_album ON songs (album_id, track_number)
    `); err != nil {
		return err
	}

	return nil
}
