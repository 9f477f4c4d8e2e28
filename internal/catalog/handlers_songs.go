package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// songSort is the closed set of list orderings. Unknown sortBy values and
// "liked" without a user fall back to the title ordering.
type songSort int

const (
	sortByTitle songSort = iota
	sortByPopular
	sortByLiked
)

func parseSongSort(raw, userID string) songSort {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "popular":
		return sortByPopular
	case "liked":
		if userID != "" {
			return sortByLiked
		}
	}
	return sortByTitle
}

const songSelect = `
	SELECT s.id, s.title, s.artist, s.album, s.genre, s.file_path, s.duration_ms,
	       s.album_art_url, s.created_at, s.updated_at,
	       (ul.user_id IS NOT NULL) AS is_liked,
	       (SELECT COUNT(*) FROM song_likes sl WHERE sl.song_id = s.id) AS like_count
	FROM songs s
	LEFT JOIN song_likes ul ON ul.song_id = s.id AND ul.user_id = $1`

func (s *Server) querySongs(ctx context.Context, term string, page, pageSize int, userID string, sort songSort) ([]SongWithLikeInfo, int, error) {
	args := []any{nullableID(userID)}
	var where []string

	if term != "" {
		args = append(args, "%"+term+"%")
		where = append(where, fmt.Sprintf("(s.title ILIKE $%d OR s.artist ILIKE $%d)", len(args), len(args)))
	}

	order := "s.title ASC"
	switch sort {
	case sortByPopular:
		where = append(where, "EXISTS (SELECT 1 FROM song_likes sl WHERE sl.song_id = s.id)")
		order = "like_count DESC, s.title ASC"
	case sortByLiked:
		where = append(where, "ul.user_id IS NOT NULL")
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countSQL := `
	SELECT COUNT(*)
	FROM songs s
	LEFT JOIN song_likes ul ON ul.song_id = s.id AND ul.user_id = $1` + cond
	if err := s.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	totalPages := (total + pageSize - 1) / pageSize

	args = append(args, pageSize, (page-1)*pageSize)
	listSQL := songSelect + cond +
		" ORDER BY " + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	songs := []SongWithLikeInfo{}
	for rows.Next() {
		var sw SongWithLikeInfo
		if err := rows.Scan(
			&sw.ID,
			&sw.Title,
			&sw.Artist,
			&sw.Album,
			&sw.Genre,
			&sw.FilePath,
			&sw.DurationMs,
			&sw.AlbumArtURL,
			&sw.CreatedAt,
			&sw.UpdatedAt,
			&sw.IsLiked,
			&sw.LikeCount,
		); err != nil {
			return nil, 0, err
		}
		songs = append(songs, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return songs, totalPages, nil
}

func (s *Server) getSongByID(ctx context.Context, songID, userID string) (*SongWithLikeInfo, error) {
	var sw SongWithLikeInfo
	err := s.db.QueryRow(ctx, songSelect+` WHERE s.id = $2`, nullableID(userID), songID).Scan(
		&sw.ID,
		&sw.Title,
		&sw.Artist,
		&sw.Album,
		&sw.Genre,
		&sw.FilePath,
		&sw.DurationMs,
		&sw.AlbumArtURL,
		&sw.CreatedAt,
		&sw.UpdatedAt,
		&sw.IsLiked,
		&sw.LikeCount,
	)
	if err != nil {
		return nil, err
	}
	return &sw, nil
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := userIDFromContext(r)

	term := strings.TrimSpace(r.URL.Query().Get("searchTerm"))
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)
	sort := parseSongSort(r.URL.Query().Get("sortBy"), userID)

	songs, totalPages, err := s.querySongs(ctx, term, page, pageSize, userID, sort)
	if err != nil {
		log.Printf("catalog-service: list songs: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"songs":      songs,
		"totalPages": totalPages,
	})
}

func (s *Server) handlePopularSongs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := userIDFromContext(r)

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)

	songs, totalPages, err := s.querySongs(ctx, "", page, pageSize, userID, sortByPopular)
	if err != nil {
		log.Printf("catalog-service: popular songs: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"songs":      songs,
		"totalPages": totalPages,
	})
}

func (s *Server) handleLikedSongs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)

	songs, totalPages, err := s.querySongs(ctx, "", page, pageSize, userID, sortByLiked)
	if err != nil {
		log.Printf("catalog-service: liked songs: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"songs":      songs,
		"totalPages": totalPages,
	})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := userIDFromContext(r)

	songID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(songID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	song, err := s.getSongByID(ctx, songID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: get song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleStreamSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := userIDFromContext(r)

	songID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(songID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	song, err := s.getSongByID(ctx, songID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: stream song fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if s.signer == nil {
		writeError(w, http.StatusInternalServerError, "stream signing unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"streamUrl": s.signer.SignedURL(song.FilePath, time.Hour),
	})
}
