package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

// Helper to setup mock DB and Server
func setupMockServer(t *testing.T) (*Server, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &Server{
		db:        mock,
		signer:    NewBlobSigner("https://blobs.example.com/songs", []byte("test-signing-key")),
		jwtSecret: []byte("test-secret"),
	}, mock
}

// Helper to create a request with signed-in user context
func newRequestWithUser(method, url, userID string) *http.Request {
	req := httptest.NewRequest(method, url, nil)
	ctx := context.WithValue(req.Context(), ctxUserIDKey{}, userID)
	return req.WithContext(ctx)
}

// Helper to attach chi URL params as key/value pairs
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func ptr(s string) *string {
	return &s
}

var songColumns = []string{
	"id", "title", "artist", "album", "genre", "file_path", "duration_ms",
	"album_art_url", "created_at", "updated_at", "is_liked", "like_count",
}

func songRow(rows *pgxmock.Rows, id, title string, liked bool, likeCount int) *pgxmock.Rows {
	return rows.AddRow(
		id, title, "Test Artist", ptr("Test Album"), nil, "songs/"+id+".mp3", 180000,
		nil, time.Now(), nil, liked, likeCount,
	)
}

var playlistColumns = []string{
	"id", "name", "description", "creator_id", "is_public", "created_at", "updated_at",
	"display_name", "is_creator", "is_in_library",
}
