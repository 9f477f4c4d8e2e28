package catalog

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func playlistSongParams(w http.ResponseWriter, r *http.Request) (string, string, string, bool) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return "", "", "", false
	}

	playlistID := chi.URLParam(r, "playlistId")
	if _, err := uuid.Parse(playlistID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return "", "", "", false
	}

	songID := chi.URLParam(r, "songId")
	if _, err := uuid.Parse(songID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid song id")
		return "", "", "", false
	}

	return userID, playlistID, songID, true
}

// handleAddPlaylistSong appends a song to the end of a playlist. Anyone who
// created the playlist or carries it in their library may add; everyone else
// sees the playlist as missing. Re-adding a song that is already in the
// playlist is a no-op.
func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, playlistID, songID, ok := playlistSongParams(w, r)
	if !ok {
		return
	}

	var allowed bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM playlists p
			LEFT JOIN user_library ul ON ul.playlist_id = p.id AND ul.user_id = $2
			WHERE p.id = $1 AND (p.creator_id = $2 OR ul.user_id IS NOT NULL)
		)
	`, playlistID, userID).Scan(&allowed)
	if err != nil {
		log.Printf("catalog-service: add playlist song access: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !allowed {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	res, err := s.db.Exec(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id, position)
		VALUES (
			$1, $2,
			COALESCE(
				(SELECT MAX(position)+1 FROM playlist_songs WHERE playlist_id = $1),
				0
			)
		)
		ON CONFLICT DO NOTHING
	`, playlistID, songID)
	if isForeignKeyViolation(err) {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: add playlist song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if res.RowsAffected() > 0 {
		s.publishEvent(ctx, "playlist.song.added", map[string]any{
			"playlistId": playlistID,
			"songId":     songID,
		})
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRemovePlaylistSong removes a song from a playlist. Unlike adding,
// removal is reserved for the creator; library members get a not found.
func (s *Server) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, playlistID, songID, ok := playlistSongParams(w, r)
	if !ok {
		return
	}

	var creatorID string
	err := s.db.QueryRow(ctx, `
		SELECT creator_id FROM playlists WHERE id = $1
	`, playlistID).Scan(&creatorID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: remove playlist song fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if creatorID != userID {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	res, err := s.db.Exec(ctx, `
		DELETE FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID)
	if err != nil {
		log.Printf("catalog-service: remove playlist song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if res.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "song is not in this playlist")
		return
	}

	s.publishEvent(ctx, "playlist.song.removed", map[string]any{
		"playlistId": playlistID,
		"songId":     songID,
	})

	w.WriteHeader(http.StatusNoContent)
}
