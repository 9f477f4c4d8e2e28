package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
)

func TestHandleAddToLibrary(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()

	me := "11111111-1111-1111-1111-111111111111"
	playlistID := "44444444-4444-4444-4444-444444444444"

	newReq := func() (*http.Request, *httptest.ResponseRecorder) {
		req := newRequestWithUser("POST", "/playlists/"+playlistID+"/library", me)
		req = withURLParams(req, "id", playlistID)
		return req, httptest.NewRecorder()
	}

	t.Run("Success", func(t *testing.T) {
		req, w := newReq()

		mock.ExpectQuery("SELECT EXISTS.*FROM playlists").
			WithArgs(playlistID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec("INSERT INTO user_library").
			WithArgs(me, playlistID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		s.handleAddToLibrary(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("AlreadySaved", func(t *testing.T) {
		req, w := newReq()

		mock.ExpectQuery("SELECT EXISTS.*FROM playlists").
			WithArgs(playlistID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec("INSERT INTO user_library").
			WithArgs(me, playlistID).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		s.handleAddToLibrary(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("PlaylistMissing", func(t *testing.T) {
		req, w := newReq()

		mock.ExpectQuery("SELECT EXISTS.*FROM playlists").
			WithArgs(playlistID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		s.handleAddToLibrary(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleRemoveFromLibrary(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()

	me := "11111111-1111-1111-1111-111111111111"
	playlistID := "44444444-4444-4444-4444-444444444444"

	newReq := func() (*http.Request, *httptest.ResponseRecorder) {
		req := newRequestWithUser("DELETE", "/playlists/"+playlistID+"/library", me)
		req = withURLParams(req, "id", playlistID)
		return req, httptest.NewRecorder()
	}

	t.Run("Success", func(t *testing.T) {
		req, w := newReq()

		mock.ExpectExec("DELETE FROM user_library").
			WithArgs(me, playlistID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		s.handleRemoveFromLibrary(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("NotInLibrary", func(t *testing.T) {
		req, w := newReq()

		mock.ExpectExec("DELETE FROM user_library").
			WithArgs(me, playlistID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		s.handleRemoveFromLibrary(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
