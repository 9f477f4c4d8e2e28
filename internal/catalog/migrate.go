package catalog

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		log.Printf("catalog-service: migrate pgcrypto: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          subject_id   TEXT NOT NULL UNIQUE,
          email        TEXT NOT NULL,
          display_name TEXT NOT NULL DEFAULT '',
          created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at   TIMESTAMPTZ
      )
    `); err != nil {
		log.Printf("catalog-service: migrate users: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS songs (
          id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          title         TEXT NOT NULL,
          artist        TEXT NOT NULL,
          album         TEXT,
          genre         TEXT,
          file_path     TEXT NOT NULL,
          duration_ms   INT NOT NULL DEFAULT 0,
          album_art_url TEXT,
          created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at    TIMESTAMPTZ
      )
    `); err != nil {
		log.Printf("catalog-service: migrate songs: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS song_likes (
          user_id    uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          song_id    uuid NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          PRIMARY KEY (user_id, song_id)
      )
    `); err != nil {
		log.Printf("catalog-service: migrate song_likes: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_song_likes_song
      ON song_likes(song_id)
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlists (
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          name        VARCHAR(200) NOT NULL,
          description VARCHAR(500),
          creator_id  uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          is_public   BOOLEAN NOT NULL DEFAULT FALSE,
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at  TIMESTAMPTZ
      )
    `); err != nil {
		log.Printf("catalog-service: migrate playlists: %v", err)
		return err
	}

	// One "Liked Songs" playlist per user, converged at the store even when
	// several instances race on the lazy creation.
	if _, err := pool.Exec(ctx, `
      CREATE UNIQUE INDEX IF NOT EXISTS idx_playlists_liked_songs
      ON playlists(creator_id, name)
      WHERE name = 'Liked Songs'
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlist_songs (
          playlist_id uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          song_id     uuid NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
          position    INT NOT NULL,
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          PRIMARY KEY (playlist_id, song_id)
      )
    `); err != nil {
		log.Printf("catalog-service: migrate playlist_songs: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS user_library (
          user_id     uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          playlist_id uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          PRIMARY KEY (user_id, playlist_id)
      )
    `); err != nil {
		log.Printf("catalog-service: migrate user_library: %v", err)
		return err
	}

	return nil
}
