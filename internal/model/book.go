// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain records with struct
// tags for serialization, no inheritance.
package model

// Book represents one audiobook in the catalog, including its stored blobs.
//
// The audio file and the optional cover image live directly in the database
// as BLOB columns, next to their name and content type. That keeps the whole
// record self-contained — no separate object storage to keep in sync.
//
// WHY []byte AND NOT A FILE PATH?
// The upload is buffered fully in memory and written in one INSERT, and the
// streaming routes read it back in one SELECT. Whole-blob storage bounds
// request size by available memory, which is the accepted trade-off here.
//
// ImageData may be nil. The invariant is: ImageName and ImageContentType are
// non-empty iff ImageData is non-empty. The catalog service enforces this on
// create; nothing can update a book afterwards, only delete it.
//
// User is the uploader's username, stored as a plain denormalized string.
// It is informational only — there is no foreign key to the users table
// (the two tables even live in different database files).
type Book struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Author           string `json:"author"`
	Description      string `json:"description"`
	FileData         []byte `json:"-"`
	FileName         string `json:"-"`
	FileContentType  string `json:"-"`
	ImageData        []byte `json:"-"`
	ImageName        string `json:"-"`
	ImageContentType string `json:"-"`
	User             string `json:"-"`
}

// HasImage reports whether a cover image was stored with this book.
func (b *Book) HasImage() bool {
	return len(b.ImageData) > 0
}

// BookSummary is the JSON shape served by GET /api/books.
//
// It exists as its own struct (rather than reusing Book with json:"-" tags)
// so the API contract is explicit: exactly these four keys, never the blobs
// and never the uploader.
type BookSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// Summary returns the API view of the book.
func (b *Book) Summary() BookSummary {
	return BookSummary{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
	}
}
