package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAddRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	req := uploadRequest(t, map[string]string{
		"title":       "Dune",
		"author":      "Frank Herbert",
		"description": "Desert planet",
	}, map[string]filePart{
		"file": {fileName: "dune.mp3", contentType: "audio/mpeg", data: testAudio},
	})
	// no login cookie
	rec := app.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// the anonymous upload must not have persisted anything
	books, err := app.books.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestHandleAddCreatesBook(t *testing.T) {
	app := newTestApp(t)

	rec := uploadBook(t, app, "alice", "Dune", true)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	books, err := app.books.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "alice", books[0].User)
}

func TestHandleAddMissingTitleRerendersForm(t *testing.T) {
	app := newTestApp(t)

	req := uploadRequest(t, map[string]string{
		"title":       "",
		"author":      "Frank Herbert",
		"description": "Desert planet",
	}, map[string]filePart{
		"file": {fileName: "dune.mp3", contentType: "audio/mpeg", data: testAudio},
	})
	req.AddCookie(loginCookie("alice"))
	rec := app.do(req)

	// a user mistake re-renders the form, it is not an HTTP error
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")

	books, err := app.books.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestHandleAddMissingAudioRerendersForm(t *testing.T) {
	app := newTestApp(t)

	req := uploadRequest(t, map[string]string{
		"title":       "Dune",
		"author":      "Frank Herbert",
		"description": "Desert planet",
	}, nil)
	req.AddCookie(loginCookie("alice"))
	rec := app.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "an audio file is required")
}

func TestHandleLibraryShowsUploadedBook(t *testing.T) {
	app := newTestApp(t)
	uploadBook(t, app, "alice", "Dune", false)

	rec := app.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dune")

	// /lib serves the same page
	rec = app.get("/lib")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dune")
}

func TestHandleDetail(t *testing.T) {
	app := newTestApp(t)
	uploadBook(t, app, "alice", "Dune", false)

	rec := app.get("/book/1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dune")
	assert.Contains(t, rec.Body.String(), "/play/1")
}

func TestHandleDetailNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/book/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Book not found")
}

func TestHandleDetailBadID(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/book/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlayStreamsAudio(t *testing.T) {
	app := newTestApp(t)
	uploadBook(t, app, "alice", "Dune", false)

	rec := app.get("/play/1")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="audio.mp3"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, testAudio, rec.Body.Bytes())
}

func TestHandlePlayNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/play/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleImageStreamsCover(t *testing.T) {
	app := newTestApp(t)
	uploadBook(t, app, "alice", "Dune", true)

	rec := app.get("/image/1")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="cover.jpg"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, testImage, rec.Body.Bytes())
}

func TestHandleImageMissingCover(t *testing.T) {
	app := newTestApp(t)
	uploadBook(t, app, "alice", "Dune", false)

	// the audio streams fine, the absent cover is a 404
	assert.Equal(t, http.StatusOK, app.get("/play/1").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/image/1").Code)
}

func TestHandleDelete(t *testing.T) {
	app := newTestApp(t)
	uploadBook(t, app, "alice", "Dune", false)

	rec := app.post("/delete/1")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/del", rec.Header().Get("Location"))

	books, err := app.books.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)

	// deleting again is a 404
	assert.Equal(t, http.StatusNotFound, app.post("/delete/1").Code)
}

func TestHandleDeletePageListsBooks(t *testing.T) {
	app := newTestApp(t)
	uploadBook(t, app, "alice", "Dune", false)

	rec := app.get("/del")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dune")
	assert.Contains(t, rec.Body.String(), "/delete/1")
}

func TestHandleAPIBooks(t *testing.T) {
	app := newTestApp(t)
	uploadBook(t, app, "alice", "Dune", true)
	uploadBook(t, app, "bob", "Hyperion", false)

	rec := app.get("/api/books")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var books []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 2)

	// insertion order
	assert.Equal(t, "Dune", books[0]["title"])
	assert.Equal(t, "Hyperion", books[1]["title"])

	// exactly the four public fields — never the blobs, never the uploader
	for _, b := range books {
		assert.Len(t, b, 4)
		assert.Contains(t, b, "id")
		assert.Contains(t, b, "title")
		assert.Contains(t, b, "author")
		assert.Contains(t, b, "description")
	}
}

func TestHandleAPIBooksEmptyCatalog(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/api/books")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

// End-to-end: register, log in, upload, then read everything back through
// every public surface.
func TestUploadRoundTrip(t *testing.T) {
	app := newTestApp(t)

	registerAndLogin(t, app, "alice", "s3cret")

	rec := uploadBook(t, app, "alice", "Dune", true)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Contains(t, app.get("/").Body.String(), "Dune")
	assert.Contains(t, app.get("/book/1").Body.String(), "Test description")
	assert.Equal(t, testAudio, app.get("/play/1").Body.Bytes())
	assert.Equal(t, testImage, app.get("/image/1").Body.Bytes())

	var books []map[string]any
	require.NoError(t, json.Unmarshal(app.get("/api/books").Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0]["title"])
}
