package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const playlistSelect = `
	SELECT p.id, p.name, p.description, p.creator_id, p.is_public, p.created_at, p.updated_at,
	       u.display_name,
	       (p.creator_id = $1) AS is_creator,
	       (ul.user_id IS NOT NULL) AS is_in_library
	FROM playlists p
	JOIN users u ON u.id = p.creator_id
	LEFT JOIN user_library ul ON ul.playlist_id = p.id AND ul.user_id = $1`

func scanPlaylistSummary(row pgx.Row) (PlaylistSummary, error) {
	var ps PlaylistSummary
	var creatorName string
	err := row.Scan(
		&ps.ID,
		&ps.Name,
		&ps.Description,
		&ps.CreatorID,
		&ps.IsPublic,
		&ps.CreatedAt,
		&ps.UpdatedAt,
		&creatorName,
		&ps.IsCreator,
		&ps.IsInLibrary,
	)
	if err != nil {
		return PlaylistSummary{}, err
	}
	ps.Creator = &CreatorInfo{ID: ps.CreatorID, Name: creatorName}
	return ps, nil
}

func (s *Server) getPlaylistSummary(ctx context.Context, playlistID, userID string) (PlaylistSummary, error) {
	return scanPlaylistSummary(s.db.QueryRow(ctx, playlistSelect+` WHERE p.id = $2`, userID, playlistID))
}

func (s *Server) playlistSongs(ctx context.Context, playlistID string) ([]Song, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.id, s.title, s.artist, s.album, s.genre, s.file_path, s.duration_ms,
		       s.album_art_url, s.created_at, s.updated_at
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = $1
		ORDER BY ps.position ASC
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		var sg Song
		if err := rows.Scan(
			&sg.ID,
			&sg.Title,
			&sg.Artist,
			&sg.Album,
			&sg.Genre,
			&sg.FilePath,
			&sg.DurationMs,
			&sg.AlbumArtURL,
			&sg.CreatedAt,
			&sg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		songs = append(songs, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return songs, nil
}

// handleCreatePlaylist creates a playlist and puts it straight into the
// creator's library so it shows up in their listing without a second call.
func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || len(body.Name) > 200 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}
	if body.Description != nil {
		desc := strings.TrimSpace(*body.Description)
		if len(desc) > 500 {
			writeError(w, http.StatusBadRequest, "description is too long")
			return
		}
		body.Description = &desc
	}

	isPublic := false
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("catalog-service: create playlist begin tx: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var pl Playlist
	err = tx.QueryRow(ctx, `
		INSERT INTO playlists (name, description, creator_id, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, creator_id, is_public, created_at, updated_at
	`, body.Name, body.Description, userID, isPublic).Scan(
		&pl.ID,
		&pl.Name,
		&pl.Description,
		&pl.CreatorID,
		&pl.IsPublic,
		&pl.CreatedAt,
		&pl.UpdatedAt,
	)
	if isUniqueViolation(err) {
		writeError(w, http.StatusBadRequest, "a playlist with this name already exists")
		return
	}
	if err != nil {
		log.Printf("catalog-service: create playlist insert: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_library (user_id, playlist_id) VALUES ($1, $2)
	`, userID, pl.ID); err != nil {
		log.Printf("catalog-service: create playlist library entry: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("catalog-service: create playlist commit: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, "playlist.created", map[string]any{"playlist": pl})

	writeJSON(w, http.StatusCreated, PlaylistSummary{
		Playlist:    pl,
		IsCreator:   true,
		IsInLibrary: true,
	})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
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

	summary, err := s.getPlaylistSummary(ctx, playlistID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: get playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	// Private playlists read as absent to everyone but the creator.
	if !summary.IsPublic && !summary.IsCreator {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	songs, err := s.playlistSongs(ctx, playlistID)
	if err != nil {
		log.Printf("catalog-service: get playlist songs: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, PlaylistWithSongs{
		PlaylistSummary: summary,
		Songs:           songs,
	})
}

// handleEditPlaylist updates playlist metadata. Only the creator may edit;
// anyone else sees the playlist as missing. Fields are written only when
// they actually change, so updated_at is not churned by no-op requests.
func (s *Server) handleEditPlaylist(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("catalog-service: edit playlist begin tx: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var existing Playlist
	err = tx.QueryRow(ctx, `
		SELECT id, name, description, creator_id, is_public, created_at, updated_at
		FROM playlists
		WHERE id = $1
	`, playlistID).Scan(
		&existing.ID,
		&existing.Name,
		&existing.Description,
		&existing.CreatorID,
		&existing.IsPublic,
		&existing.CreatedAt,
		&existing.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: edit playlist fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if existing.CreatorID != userID {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	changed := false
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" || len(name) > 200 {
			writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
			return
		}
		if name != existing.Name {
			existing.Name = name
			changed = true
		}
	}
	if body.Description != nil {
		desc := strings.TrimSpace(*body.Description)
		if len(desc) > 500 {
			writeError(w, http.StatusBadRequest, "description is too long")
			return
		}
		if existing.Description == nil || desc != *existing.Description {
			existing.Description = &desc
			changed = true
		}
	}
	if body.IsPublic != nil && *body.IsPublic != existing.IsPublic {
		existing.IsPublic = *body.IsPublic
		changed = true
	}

	if !changed {
		if err := tx.Commit(ctx); err != nil {
			log.Printf("catalog-service: edit playlist commit noop: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		writeJSON(w, http.StatusOK, existing)
		return
	}

	err = tx.QueryRow(ctx, `
		UPDATE playlists
		SET name = $2,
			description = $3,
			is_public = $4,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, existing.ID, existing.Name, existing.Description, existing.IsPublic).Scan(&existing.UpdatedAt)
	if isUniqueViolation(err) {
		writeError(w, http.StatusBadRequest, "a playlist with this name already exists")
		return
	}
	if err != nil {
		log.Printf("catalog-service: edit playlist update: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("catalog-service: edit playlist commit: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, "playlist.updated", map[string]any{"playlist": existing})

	writeJSON(w, http.StatusOK, existing)
}

// handleDeletePlaylist deletes a playlist; entry and library rows go with it.
func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
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

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("catalog-service: delete playlist begin tx: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var creatorID string
	err = tx.QueryRow(ctx, `
		SELECT creator_id FROM playlists WHERE id = $1
	`, playlistID).Scan(&creatorID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: delete playlist fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if creatorID != userID {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	if _, err := tx.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, playlistID); err != nil {
		log.Printf("catalog-service: delete playlist exec: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("catalog-service: delete playlist commit: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, "playlist.deleted", map[string]any{"playlistId": playlistID})

	w.WriteHeader(http.StatusNoContent)
}

// handleListPlaylists lists the requester's library (created or followed).
// The "Liked Songs" playlist is never part of the scan; when the search term
// matches it, it is built separately and always leads the result.
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	term := strings.TrimSpace(r.URL.Query().Get("searchTerm"))

	args := []any{userID, likedSongsPlaylistName}
	cond := ""
	if term != "" {
		args = append(args, "%"+term+"%")
		cond = fmt.Sprintf(" AND p.name ILIKE $%d", len(args))
	}

	rows, err := s.db.Query(ctx, playlistSelect+`
		WHERE (p.creator_id = $1 OR ul.user_id IS NOT NULL)
		  AND p.name <> $2`+cond+`
		ORDER BY p.name ASC
	`, args...)
	if err != nil {
		log.Printf("catalog-service: list playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	playlists := []PlaylistSummary{}
	for rows.Next() {
		ps, err := scanPlaylistSummary(rows)
		if err != nil {
			log.Printf("catalog-service: list playlists scan: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		playlists = append(playlists, ps)
	}
	if err := rows.Err(); err != nil {
		log.Printf("catalog-service: list playlists rows: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if term == "" || strings.Contains(strings.ToLower(likedSongsPlaylistName), strings.ToLower(term)) {
		likedID, err := getOrCreateLikedSongsPlaylist(ctx, s.db, userID)
		if err != nil {
			log.Printf("catalog-service: list playlists liked songs: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		liked, err := s.getPlaylistSummary(ctx, likedID, userID)
		if err != nil {
			log.Printf("catalog-service: list playlists liked summary: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		playlists = append([]PlaylistSummary{liked}, playlists...)
	}

	writeJSON(w, http.StatusOK, playlists)
}

// handleListAllPlaylists pages through every playlist visible to the
// requester: public ones plus their own. "Liked Songs" rows never appear.
func (s *Server) handleListAllPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	term := strings.TrimSpace(r.URL.Query().Get("searchTerm"))
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)

	args := []any{userID, likedSongsPlaylistName}
	cond := `
		WHERE (p.is_public OR p.creator_id = $1)
		  AND p.name <> $2`
	if term != "" {
		args = append(args, "%"+term+"%")
		cond += fmt.Sprintf(" AND p.name ILIKE $%d", len(args))
	}

	var total int
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM playlists p`+cond, args...).Scan(&total); err != nil {
		log.Printf("catalog-service: list all playlists count: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	totalPages := (total + pageSize - 1) / pageSize

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.db.Query(ctx, playlistSelect+cond+
		fmt.Sprintf(" ORDER BY p.name ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		log.Printf("catalog-service: list all playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	playlists := []PlaylistSummary{}
	for rows.Next() {
		ps, err := scanPlaylistSummary(rows)
		if err != nil {
			log.Printf("catalog-service: list all playlists scan: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		playlists = append(playlists, ps)
	}
	if err := rows.Err(); err != nil {
		log.Printf("catalog-service: list all playlists rows: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlists":  playlists,
		"totalPages": totalPages,
	})
}

func (s *Server) handleGetLikedSongsPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	likedID, err := getOrCreateLikedSongsPlaylist(ctx, s.db, userID)
	if err != nil {
		log.Printf("catalog-service: liked songs playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	summary, err := s.getPlaylistSummary(ctx, likedID, userID)
	if err != nil {
		log.Printf("catalog-service: liked songs summary: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	songs, err := s.playlistSongs(ctx, likedID)
	if err != nil {
		log.Printf("catalog-service: liked songs entries: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, PlaylistWithSongs{
		PlaylistSummary: summary,
		Songs:           songs,
	})
}
