package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aaa221132/audiobook-library/internal/apperror"
	"github.com/aaa221132/audiobook-library/internal/auth"
	"github.com/aaa221132/audiobook-library/internal/model"
	"github.com/aaa221132/audiobook-library/internal/repository"
	"github.com/aaa221132/audiobook-library/internal/service"
)

// maxUploadBytes caps a single multipart upload. Uploads are buffered
// fully in memory before the INSERT, so this bound is also the memory
// bound per upload request.
const maxUploadBytes = 64 << 20 // 64 MiB

// BookHandler serves the catalog: HTML pages, the upload form, blob
// streaming, and the JSON API consumed by the mobile client.
type BookHandler struct {
	books  *service.BookService
	render *Renderer
	logger *slog.Logger
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(books *service.BookService, render *Renderer, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		books:  books,
		render: render,
		logger: logger,
	}
}

// HandleLibrary renders the catalog listing.
//
// HTTP: GET / and GET /lib
func (h *BookHandler) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	h.renderCatalog(w, r, "lib.html")
}

// HandleDeletePage renders the catalog with delete controls.
//
// HTTP: GET /del
//
// Deliberately reachable without a login: any caller may curate the
// catalog, the same way any caller may POST /delete/{id} directly.
func (h *BookHandler) HandleDeletePage(w http.ResponseWriter, r *http.Request) {
	h.renderCatalog(w, r, "del.html")
}

func (h *BookHandler) renderCatalog(w http.ResponseWriter, r *http.Request, page string) {
	books, err := h.books.List(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	username, _ := auth.CurrentUser(r)
	h.render.Render(w, http.StatusOK, page, map[string]any{
		"Books": books,
		"User":  username,
	})
}

// HandleDetail renders one book's page.
//
// HTTP: GET /book/{id} — 404 plain text when the id is unknown.
func (h *BookHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	book, err := h.books.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.Error(w, "Book not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load book", slog.Int64("id", id), slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	username, _ := auth.CurrentUser(r)
	h.render.Render(w, http.StatusOK, "book_detail.html", map[string]any{
		"Book": book,
		"User": username,
	})
}

// HandleAddForm renders the upload form.
//
// HTTP: GET /add
func (h *BookHandler) HandleAddForm(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.CurrentUser(r)
	h.render.Render(w, http.StatusOK, "add.html", map[string]any{
		"User": username,
	})
}

// HandleAdd accepts a multipart upload and creates a catalog entry.
//
// HTTP: POST /add
// Fields: title, author, description, file (required), image (optional).
//
// An anonymous caller is redirected to /login before anything is read or
// persisted. Validation failures re-render the form with a message (200).
// Success redirects to / with 303 See Other so a refresh can't resubmit.
func (h *BookHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderAddError(w, username, "could not read the upload form")
		return
	}

	in := service.BookInput{
		Title:       r.FormValue("title"),
		Author:      r.FormValue("author"),
		Description: r.FormValue("description"),
		Username:    username,
	}

	fileData, fileName, fileType, err := readFormFile(r, "file")
	if err != nil && err != http.ErrMissingFile {
		h.renderAddError(w, username, "could not read the audio file")
		return
	}
	in.FileData = fileData
	in.FileName = fileName
	in.FileContentType = fileType

	// the cover image is optional — a missing part is fine
	imageData, imageName, imageType, err := readFormFile(r, "image")
	if err != nil && err != http.ErrMissingFile {
		h.renderAddError(w, username, "could not read the cover image")
		return
	}
	in.ImageData = imageData
	in.ImageName = imageName
	in.ImageContentType = imageType

	book, err := h.books.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			var appErr *apperror.AppError
			errors.As(err, &appErr)
			h.renderAddError(w, username, appErr.Message)
			return
		}
		h.logger.Error("failed to create book", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("book uploaded",
		slog.Int64("id", book.ID),
		slog.String("user", username),
	)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *BookHandler) renderAddError(w http.ResponseWriter, username, message string) {
	h.render.Render(w, http.StatusOK, "add.html", map[string]any{
		"User":  username,
		"Error": message,
	})
}

// HandleDelete removes a book.
//
// HTTP: POST /delete/{id} — 404 plain text when the id is unknown,
// otherwise a 303 back to the deletion page. No ownership check.
func (h *BookHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.books.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.Error(w, "Book not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete book", slog.Int64("id", id), slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/del", http.StatusSeeOther)
}

// HandlePlay streams a book's audio.
//
// HTTP: GET /play/{id}
func (h *BookHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	h.streamBlob(w, r, h.books.StreamFile, "Audio not found")
}

// HandleImage streams a book's cover image.
//
// HTTP: GET /image/{id} — 404 for books uploaded without a cover.
func (h *BookHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	h.streamBlob(w, r, h.books.StreamImage, "Image not found")
}

// streamBlob is the shared blob-serving path for /play and /image.
//
// The whole blob is already in memory (one SELECT); it goes out as one
// contiguous body write. No range requests, no partial content — the
// stored Content-Type plus an inline Content-Disposition with the stored
// filename are the whole contract.
func (h *BookHandler) streamBlob(
	w http.ResponseWriter,
	r *http.Request,
	load func(ctx context.Context, id int64) (*repository.Blob, error),
	notFoundMsg string,
) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	blob, err := load(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.Error(w, notFoundMsg, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load blob", slog.Int64("id", id), slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", blob.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	if _, err := w.Write(blob.Data); err != nil {
		// client went away mid-body; nothing to do but log
		h.logger.Debug("blob write interrupted", slog.Int64("id", id), slog.String("error", err.Error()))
	}
}

// HandleAPIBooks serves the read-only JSON catalog for the mobile client.
//
// HTTP: GET /api/books
//
// The response is an array of exactly {id, title, author, description} —
// never the blobs, never the uploader. No pagination.
func (h *BookHandler) HandleAPIBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]model.BookSummary, 0, len(books))
	for i := range books {
		summaries = append(summaries, books[i].Summary())
	}

	writeJSON(w, http.StatusOK, summaries)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid book id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// readFormFile pulls one file part out of the parsed multipart form and
// buffers it fully. Returns http.ErrMissingFile when the part is absent.
func readFormFile(r *http.Request, field string) (data []byte, name, contentType string, err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", "", err
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("reading %s part: %w", field, err)
	}

	return data, header.Filename, partContentType(header), nil
}

// partContentType reads the Content-Type the browser attached to the part.
func partContentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}
