package catalog

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) songExists(ctx context.Context, songID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM songs WHERE id = $1)
	`, songID).Scan(&exists)
	return exists, err
}

// likeTarget validates the song id and confirms the song exists; the
// like/unlike/read handlers all share this preamble.
func (s *Server) likeTarget(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return "", "", false
	}

	songID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(songID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid song id")
		return "", "", false
	}

	exists, err := s.songExists(r.Context(), songID)
	if err != nil {
		log.Printf("catalog-service: song exists check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return "", "", false
	}
	if !exists {
		writeError(w, http.StatusNotFound, "song not found")
		return "", "", false
	}

	return userID, songID, true
}

func (s *Server) handleLikeSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, songID, ok := s.likeTarget(w, r)
	if !ok {
		return
	}

	added, err := s.likeSong(ctx, userID, songID)
	if err != nil {
		log.Printf("catalog-service: like song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !added {
		writeError(w, http.StatusBadRequest, "song is already liked")
		return
	}

	s.publishEvent(ctx, "song.liked", map[string]any{
		"songId": songID,
		"userId": userID,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnlikeSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, songID, ok := s.likeTarget(w, r)
	if !ok {
		return
	}

	removed, err := s.unlikeSong(ctx, userID, songID)
	if err != nil {
		log.Printf("catalog-service: unlike song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !removed {
		writeError(w, http.StatusBadRequest, "song is not liked")
		return
	}

	s.publishEvent(ctx, "song.unliked", map[string]any{
		"songId": songID,
		"userId": userID,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIsSongLiked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, songID, ok := s.likeTarget(w, r)
	if !ok {
		return
	}

	liked, err := s.isLiked(ctx, userID, songID)
	if err != nil {
		log.Printf("catalog-service: is liked: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"isLiked": liked})
}

func (s *Server) handleSongLikeCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, songID, ok := s.likeTarget(w, r)
	if !ok {
		return
	}

	count, err := s.likeCount(ctx, songID)
	if err != nil {
		log.Printf("catalog-service: like count: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"likeCount": count})
}
