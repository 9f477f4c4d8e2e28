package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// likeSong records a like and mirrors it into the user's "Liked Songs"
// playlist in the same transaction. Returns false when the song was already
// liked; a concurrent duplicate insert resolves the same way via the
// (user_id, song_id) primary key.
func (s *Server) likeSong(ctx context.Context, userID, songID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		INSERT INTO song_likes (user_id, song_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, songID)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() == 0 {
		return false, nil
	}

	playlistID, err := getOrCreateLikedSongsPlaylist(ctx, tx, userID)
	if err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id, position)
		VALUES (
			$1, $2,
			COALESCE(
				(SELECT MAX(position)+1 FROM playlist_songs WHERE playlist_id = $1),
				0
			)
		)
		ON CONFLICT DO NOTHING
	`, playlistID, songID); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// unlikeSong is the mirror of likeSong: the like row and the "Liked Songs"
// entry go away together or not at all.
func (s *Server) unlikeSong(ctx context.Context, userID, songID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		DELETE FROM song_likes WHERE user_id = $1 AND song_id = $2
	`, userID, songID)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() == 0 {
		return false, nil
	}

	var playlistID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM playlists WHERE creator_id = $1 AND name = $2
	`, userID, likedSongsPlaylistName).Scan(&playlistID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	if err == nil {
		if _, err := tx.Exec(ctx, `
			DELETE FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2
		`, playlistID, songID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Server) isLiked(ctx context.Context, userID, songID string) (bool, error) {
	var liked bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM song_likes WHERE user_id = $1 AND song_id = $2)
	`, userID, songID).Scan(&liked)
	return liked, err
}

func (s *Server) likeCount(ctx context.Context, songID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM song_likes WHERE song_id = $1
	`, songID).Scan(&count)
	return count, err
}
