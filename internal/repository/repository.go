package repository

import (
	"context"

	"github.com/aaa221132/audiobook-library/internal/model"
)

// Blob is a stored binary payload with the metadata needed to serve it.
type Blob struct {
	Data        []byte
	ContentType string
	Name        string
}

// BookRepository is the catalog store: create, list, get, delete, and the
// two blob read paths. Books are immutable after creation — there is no
// Update on purpose.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	// List returns catalog metadata in id (insertion) order. Implementations
	// must not load the blob columns here; listings only need the text fields.
	List(ctx context.Context) ([]model.Book, error)
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	// FileBlob returns the audio payload; ImageBlob the cover image.
	// Both return apperror.ErrNotFound when the row or the blob is absent.
	FileBlob(ctx context.Context, id int64) (*Blob, error)
	ImageBlob(ctx context.Context, id int64) (*Blob, error)
}

// UserRepository is the credential store. Insert fails with
// apperror.ErrDuplicateUsername when the username is taken; no update or
// delete is exposed — accounts live forever.
type UserRepository interface {
	Insert(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}
