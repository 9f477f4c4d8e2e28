package catalog

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleAddToLibrary saves a playlist into the requester's library. Any
// playlist that exists can be saved, even a private one, so shared links
// keep working when the owner later flips visibility.
func (s *Server) handleAddToLibrary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	playlistID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(playlistID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM playlists WHERE id = $1)
	`, playlistID).Scan(&exists)
	if err != nil {
		log.Printf("catalog-service: add to library check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	res, err := s.db.Exec(ctx, `
		INSERT INTO user_library (user_id, playlist_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, playlistID)
	if err != nil {
		log.Printf("catalog-service: add to library: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if res.RowsAffected() > 0 {
		s.publishEvent(ctx, "library.playlist.added", map[string]any{
			"playlistId": playlistID,
			"userId":     userID,
		})
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFromLibrary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	playlistID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(playlistID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	res, err := s.db.Exec(ctx, `
		DELETE FROM user_library WHERE user_id = $1 AND playlist_id = $2
	`, userID, playlistID)
	if err != nil {
		log.Printf("catalog-service: remove from library: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if res.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "playlist is not in your library")
		return
	}

	s.publishEvent(ctx, "library.playlist.removed", map[string]any{
		"playlistId": playlistID,
		"userId":     userID,
	})

	w.WriteHeader(http.StatusNoContent)
}
