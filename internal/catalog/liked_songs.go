package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// rowQuerier is satisfied by both DB and pgx.Tx so the lazy provisioning can
// run inside a caller's transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// getOrCreateLikedSongsPlaylist returns the id of the user's "Liked Songs"
// playlist, creating it on first access. A concurrent double-create loses on
// the partial unique index and falls back to the lookup, so exactly one row
// survives no matter how many instances race.
func getOrCreateLikedSongsPlaylist(ctx context.Context, q rowQuerier, userID string) (string, error) {
	var id string
	err := q.QueryRow(ctx, `
		SELECT id FROM playlists WHERE creator_id = $1 AND name = $2
	`, userID, likedSongsPlaylistName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO playlists (name, description, creator_id, is_public)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (creator_id, name) WHERE name = 'Liked Songs' DO NOTHING
		RETURNING id
	`, likedSongsPlaylistName, likedSongsDescription, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race; the surviving row is the result.
		err = q.QueryRow(ctx, `
			SELECT id FROM playlists WHERE creator_id = $1 AND name = $2
		`, userID, likedSongsPlaylistName).Scan(&id)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
