package catalog

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
)

func songDetailRow(id, title string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "title", "track_number",
		"band_id", "band_name",
		"album_id", "album_title", "album_cover_image_url",
		"duration_ms", "audio_url",
	}).AddRow(
		id, title, 1,
		"band-1", "Slayer",
		"album-1", "Reign in Blood", "http://img.local/cover.jpg",
		291000, "http://cdn.local/"+id+".mp3",
	)
}

func TestHandleGetSong(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()

	t.Run("Success", func(t *testing.T) {
		songID := uuid.NewString()
		mock.ExpectQuery("SELECT s.id, s.title.*JOIN albums.*JOIN bands").
			WithArgs(songID).
			WillReturnRows(songDetailRow(songID, "Angel of Death"))

		w := serve(s, "GET", "/songs/"+songID, "")

		assert.Equal(t, http.StatusOK, w.Code)

		var d SongDetail
		json.Unmarshal(w.Body.Bytes(), &d)
		assert.Equal(t, "Angel of Death", d.Title)
		assert.Equal(t, "Slayer", d.BandName)
		assert.Equal(t, "Reign in Blood", d.AlbumTitle)
		assert.Equal(t, 291000, d.DurationMs)
	})

	t.Run("NotFound", func(t *testing.T) {
		songID := uuid.NewString()
		mock.ExpectQuery("SELECT s.id, s.title").
			WithArgs(songID).
			WillReturnError(pgx.ErrNoRows)

		w := serve(s, "GET", "/songs/"+songID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "song not found")
	})

	t.Run("MalformedID", func(t *testing.T) {
		// No ExpectQuery: a non-uuid id must be rejected before the database.
		w := serve(s, "GET", "/songs/not-a-uuid", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "song not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHandleSearchSongs(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT s.id, s.title.*ILIKE").
			WithArgs("angel").
			WillReturnRows(songDetailRow("song-1", "Angel of Death"))

		w := serve(s, "GET", "/songs/search?q=angel", "")

		assert.Equal(t, http.StatusOK, w.Code)

		var songs []SongDetail
		json.Unmarshal(w.Body.Bytes(), &songs)
		assert.Len(t, songs, 1)
		assert.Equal(t, "song-1", songs[0].ID)
	})

	t.Run("MissingTerm", func(t *testing.T) {
		w := serve(s, "GET", "/songs/search", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleCreateSong(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()

	t.Run("Success", func(t *testing.T) {
		// The band comes off the album, not the request.
		mock.ExpectQuery("SELECT band_id FROM albums WHERE id").
			WithArgs("album-1").
			WillReturnRows(pgxmock.NewRows([]string{"band_id"}).AddRow("band-1"))
		mock.ExpectExec("INSERT INTO songs").
			WithArgs(pgxmock.AnyArg(), "album-1", "band-1", "Angel of Death", 1,
				291000, "", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		// Loaded again for the published event payload.
		mock.ExpectQuery("SELECT s.id, s.title").
			WithArgs(pgxmock.AnyArg()).
			WillReturnRows(songDetailRow("song-1", "Angel of Death"))

		w := serve(s, "POST", "/songs", `{
			"albumId": "album-1",
			"title": "Angel of Death",
			"trackNumber": 1,
			"durationMs": 291000
		}`)

		assert.Equal(t, http.StatusCreated, w.Code)

		var song Song
		json.Unmarshal(w.Body.Bytes(), &song)
		assert.Equal(t, "band-1", song.BandID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownAlbum", func(t *testing.T) {
		mock.ExpectQuery("SELECT band_id FROM albums WHERE id").
			WithArgs("album-x").
			WillReturnError(pgx.ErrNoRows)

		w := serve(s, "POST", "/songs", `{"albumId": "album-x", "title": "Orphan"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "album does not exist")
	})

	t.Run("MissingAlbumID", func(t *testing.T) {
		w := serve(s, "POST", "/songs", `{"title": "No Album"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "albumId is required")
	})
}

func TestHandleUpdateSong(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE songs").
			WithArgs("song-1", "Angel of Death (Remaster)", 1, 291000, "", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery("SELECT s.id, s.title").
			WithArgs("song-1").
			WillReturnRows(songDetailRow("song-1", "Angel of Death (Remaster)"))

		w := serve(s, "PUT", "/songs/song-1", `{
			"title": "Angel of Death (Remaster)",
			"trackNumber": 1,
			"durationMs": 291000
		}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var d SongDetail
		json.Unmarshal(w.Body.Bytes(), &d)
		assert.Equal(t, "Angel of Death (Remaster)", d.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE songs").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		w := serve(s, "PUT", "/songs/song-x", `{"title": "Ghost Song"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleListAlbumSongs(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id FROM albums WHERE id").
			WithArgs("album-1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("album-1"))
		mock.ExpectQuery("SELECT s.id, s.title.*WHERE s.album_id").
			WithArgs("album-1").
			WillReturnRows(songDetailRow("song-1", "Angel of Death"))

		w := serve(s, "GET", "/albums/album-1/songs", "")

		assert.Equal(t, http.StatusOK, w.Code)

		var songs []SongDetail
		json.Unmarshal(w.Body.Bytes(), &songs)
		assert.Len(t, songs, 1)
	})

	t.Run("AlbumNotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id FROM albums WHERE id").
			WithArgs("album-x").
			WillReturnError(pgx.ErrNoRows)

		w := serve(s, "GET", "/albums/album-x/songs", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleDeleteSong(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM songs").
		WithArgs("song-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	w := serve(s, "DELETE", "/songs/song-1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
