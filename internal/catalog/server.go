package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// DB is the subset of *pgxpool.Pool the handlers use.
// It is implemented by *pgxpool.Pool and can be mocked for testing.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Server struct {
	db        DB
	rdb       *redis.Client
	signer    *BlobSigner
	jwtSecret []byte
}

func NewServer(db DB, rdb *redis.Client, signer *BlobSigner, jwtSecret []byte) *Server {
	return &Server{
		db:        db,
		rdb:       rdb,
		signer:    signer,
		jwtSecret: jwtSecret,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/songs", s.handleListSongs)
		r.Get("/songs/popular", s.handlePopularSongs)
		r.Get("/songs/liked", s.handleLikedSongs)
		r.Get("/songs/{id}", s.handleGetSong)
		r.Get("/songs/{id}/stream", s.handleStreamSong)
		r.Post("/songs/{id}/like", s.handleLikeSong)
		r.Delete("/songs/{id}/like", s.handleUnlikeSong)
		r.Get("/songs/{id}/like", s.handleIsSongLiked)
		r.Get("/songs/{id}/likes", s.handleSongLikeCount)

		r.Get("/playlists", s.handleListPlaylists)
		r.Get("/playlists/all", s.handleListAllPlaylists)
		r.Get("/playlists/liked", s.handleGetLikedSongsPlaylist)
		r.Post("/playlists", s.handleCreatePlaylist)
		r.Get("/playlists/{id}", s.handleGetPlaylist)
		r.Patch("/playlists/{id}", s.handleEditPlaylist)
		r.Delete("/playlists/{id}", s.handleDeletePlaylist)

		r.Post("/playlists/{playlistId}/songs/{songId}", s.handleAddPlaylistSong)
		r.Delete("/playlists/{playlistId}/songs/{songId}", s.handleRemovePlaylistSong)

		r.Post("/playlists/{id}/library", s.handleAddToLibrary)
		r.Delete("/playlists/{id}/library", s.handleRemoveFromLibrary)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "catalog-service",
	})
}
