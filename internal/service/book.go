// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER SPLIT:
//
//	Handler (HTTP)     → parses requests, renders templates, writes responses
//	Service (business) → validates, enforces invariants, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services take interfaces (repository.BookRepository), not concrete sqlite
// types, so tests can inject in-memory fakes and the storage backend can be
// swapped in one line of wiring.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aaa221132/audiobook-library/internal/apperror"
	"github.com/aaa221132/audiobook-library/internal/model"
	"github.com/aaa221132/audiobook-library/internal/repository"
)

// BookInput carries everything a catalog upload provides. The image triple
// and Username are optional; everything else is required.
type BookInput struct {
	Title            string
	Author           string
	Description      string
	FileData         []byte
	FileName         string
	FileContentType  string
	ImageData        []byte
	ImageName        string
	ImageContentType string
	Username         string
}

// BookService handles the catalog business logic.
type BookService struct {
	repo   repository.BookRepository
	logger *slog.Logger
}

// NewBookService creates a BookService. The caller decides which repository
// implementation to inject (sqlite in production, a fake in tests).
func NewBookService(repo repository.BookRepository, logger *slog.Logger) *BookService {
	return &BookService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and persists a new audiobook, returning it with the
// assigned id.
//
// Required fields: title, author, description, the audio bytes, and the
// audio file's name and content type. A missing one fails with
// apperror.ErrValidation naming the field, which the upload form renders
// as an in-page message.
//
// IMAGE INVARIANT:
// image name and content type must be present iff image bytes are present.
// An upload with no image bytes gets its image metadata cleared here, so a
// half-filled image triple can never reach the store.
//
// Whether the caller is logged in is the HTTP boundary's concern — by the
// time this runs, the handler has already redirected anonymous uploads to
// /login.
func (s *BookService) Create(ctx context.Context, in BookInput) (*model.Book, error) {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	description := strings.TrimSpace(in.Description)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if author == "" {
		return nil, apperror.ValidationFailed("author", "author is required")
	}
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if len(in.FileData) == 0 {
		return nil, apperror.ValidationFailed("file", "an audio file is required")
	}
	if in.FileName == "" {
		return nil, apperror.ValidationFailed("file", "the audio file has no name")
	}
	if in.FileContentType == "" {
		return nil, apperror.ValidationFailed("file", "the audio file has no content type")
	}

	book := &model.Book{
		Title:           title,
		Author:          author,
		Description:     description,
		FileData:        in.FileData,
		FileName:        in.FileName,
		FileContentType: in.FileContentType,
		User:            in.Username,
	}

	// image metadata only travels with image bytes
	if len(in.ImageData) > 0 {
		book.ImageData = in.ImageData
		book.ImageName = in.ImageName
		book.ImageContentType = in.ImageContentType
	}

	if err := s.repo.Create(ctx, book); err != nil {
		s.logger.Error("failed to create book",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating book: %w", err)
	}

	s.logger.Info("book created",
		slog.Int64("id", book.ID),
		slog.String("title", book.Title),
		slog.String("user", book.User),
	)

	return book, nil
}

// List returns the catalog metadata in insertion order. Blobs are not
// loaded on this path.
func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list books", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return books, nil
}

// GetByID retrieves one book, blobs included.
// Returns apperror.ErrNotFound if it doesn't exist.
func (s *BookService) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	// NotFound is a normal outcome here, not worth an error log.
	return s.repo.GetByID(ctx, id)
}

// Delete removes a book. Any caller may delete any book — there is no
// ownership check, intentionally (see the /del curation page).
// Returns apperror.ErrNotFound if nothing was deleted.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("book deleted", slog.Int64("id", id))
	return nil
}

// StreamFile returns the audio blob for a book, whole and in memory.
// The handler writes it as one contiguous response body.
func (s *BookService) StreamFile(ctx context.Context, id int64) (*repository.Blob, error) {
	return s.repo.FileBlob(ctx, id)
}

// StreamImage returns the cover image blob, or apperror.ErrNotFound for a
// book created without one.
func (s *BookService) StreamImage(ctx context.Context, id int64) (*repository.Blob, error) {
	return s.repo.ImageBlob(ctx, id)
}
