package handler

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/aaa221132/audiobook-library/internal/auth"
	sqliteRepo "github.com/aaa221132/audiobook-library/internal/repository/sqlite"
	"github.com/aaa221132/audiobook-library/internal/service"
)

// testApp is a fully wired application over in-memory databases, driven
// through the same route table the real server mounts.
type testApp struct {
	router *chi.Mux
	books  *service.BookService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bookDB, err := sqliteRepo.NewBookDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { bookDB.Close() })

	userDB, err := sqliteRepo.NewUserDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { userDB.Close() })

	render, err := NewRenderer("../../web/templates", logger)
	require.NoError(t, err)

	bookService := service.NewBookService(bookDB, logger)
	bookHandler := NewBookHandler(bookService, render, logger)

	// minimum bcrypt cost keeps the auth tests fast
	authService := service.NewAuthService(userDB, auth.NewPasswordServiceWithCost(4), logger)
	authHandler := NewAuthHandler(authService, render, logger)

	r := chi.NewRouter()
	r.Get("/", bookHandler.HandleLibrary)
	r.Get("/lib", bookHandler.HandleLibrary)
	r.Get("/book/{id}", bookHandler.HandleDetail)
	r.Get("/add", bookHandler.HandleAddForm)
	r.Post("/add", bookHandler.HandleAdd)
	r.Post("/delete/{id}", bookHandler.HandleDelete)
	r.Get("/play/{id}", bookHandler.HandlePlay)
	r.Get("/image/{id}", bookHandler.HandleImage)
	r.Get("/del", bookHandler.HandleDeletePage)
	r.Get("/api/books", bookHandler.HandleAPIBooks)
	r.Get("/register", authHandler.HandleRegisterForm)
	r.Post("/register", authHandler.HandleRegister)
	r.Get("/login", authHandler.HandleLoginForm)
	r.Post("/login", authHandler.HandleLogin)
	r.Get("/logout", authHandler.HandleLogout)

	return &testApp{router: r, books: bookService}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) post(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodPost, path, nil))
}

// postForm submits an urlencoded form, as the login/register pages do.
func (a *testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func loginCookie(username string) *http.Cookie {
	return &http.Cookie{Name: auth.CookieName, Value: username}
}

// filePart is one file field of a multipart upload.
type filePart struct {
	fileName    string
	contentType string
	data        []byte
}

// uploadRequest builds a POST /add multipart request the way a browser
// submits the upload form.
func uploadRequest(t *testing.T, fields map[string]string, files map[string]filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}

	for field, fp := range files {
		// CreatePart instead of CreateFormFile so the part carries the
		// browser-supplied Content-Type, which the server stores.
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fp.fileName))
		header.Set("Content-Type", fp.contentType)

		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(fp.data)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/add", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var (
	testAudio = []byte("ID3\x04\x00fake mp3 payload for tests")
	testImage = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x10, 0x20, 0x30}
)

// uploadBook pushes one complete book through POST /add as the given user
// and returns the recorder.
func uploadBook(t *testing.T, app *testApp, username, title string, withImage bool) *httptest.ResponseRecorder {
	t.Helper()

	files := map[string]filePart{
		"file": {fileName: "audio.mp3", contentType: "audio/mpeg", data: testAudio},
	}
	if withImage {
		files["image"] = filePart{fileName: "cover.jpg", contentType: "image/jpeg", data: testImage}
	}

	req := uploadRequest(t, map[string]string{
		"title":       title,
		"author":      "Test Author",
		"description": "Test description",
	}, files)
	req.AddCookie(loginCookie(username))

	return app.do(req)
}
