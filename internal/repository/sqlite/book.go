package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaa221132/audiobook-library/internal/apperror"
	"github.com/aaa221132/audiobook-library/internal/model"
	"github.com/aaa221132/audiobook-library/internal/repository"
)

// compile-time check that *BookDB implements repository.BookRepository
var _ repository.BookRepository = (*BookDB)(nil)

// BookDB is the catalog store, backed by its own database file.
type BookDB struct {
	conn *sql.DB
}

// NewBookDB opens (or creates) the catalog database and runs its migration.
//
// dbPath examples:
//   - "data/audiobooks.db" → file-based, persistent
//   - ":memory:"           → in-memory, great for tests
func NewBookDB(dbPath string) (*BookDB, error) {
	conn, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	db := &BookDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: migrating books schema: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to NewBookDB.
func (db *BookDB) Close() error {
	return db.conn.Close()
}

// migrate creates the books table. CREATE TABLE IF NOT EXISTS is idempotent,
// so this is safe to run on every startup.
//
// The image columns are nullable: a book without a cover stores NULL in all
// three. The audio columns are NOT NULL — a book without its file is not a
// book.
func (db *BookDB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS books (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			title              TEXT NOT NULL,
			author             TEXT NOT NULL,
			description        TEXT NOT NULL,
			file_data          BLOB NOT NULL,
			file_name          TEXT NOT NULL,
			file_content_type  TEXT NOT NULL,
			image_data         BLOB,
			image_name         TEXT,
			image_content_type TEXT,
			user               TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating books table: %w", err)
	}
	return nil
}

// Create inserts a new book and fills in the assigned id.
//
// The ? placeholders are filled in order by the driver, which handles
// escaping — never build SQL with string concatenation.
//
// Nullable columns: the image triple and the uploader are stored as NULL
// when empty, so the "image absent" state is a real NULL in the schema
// rather than a zero-length blob.
func (db *BookDB) Create(ctx context.Context, book *model.Book) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO books (title, author, description,
		                    file_data, file_name, file_content_type,
		                    image_data, image_name, image_content_type, user)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.Title,
		book.Author,
		book.Description,
		book.FileData,
		book.FileName,
		book.FileContentType,
		nullBytes(book.ImageData),
		nullString(book.ImageName),
		nullString(book.ImageContentType),
		nullString(book.User),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating book: %w", err)
	}

	// INTEGER PRIMARY KEY means SQLite assigned the rowid; report it back
	// so the caller can redirect to /book/{id}.
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new book id: %w", err)
	}
	book.ID = id

	return nil
}

// GetByID retrieves a single book, blobs included.
// Returns apperror.ErrNotFound if no book exists with that id.
func (db *BookDB) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	var (
		book      model.Book
		imageData []byte
		imageName sql.NullString
		imageType sql.NullString
		user      sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, author, description,
		        file_data, file_name, file_content_type,
		        image_data, image_name, image_content_type, user
		 FROM books WHERE id = ?`,
		id,
	).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.FileData,
		&book.FileName,
		&book.FileContentType,
		&imageData,
		&imageName,
		&imageType,
		&user,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("book", id)
		}
		return nil, fmt.Errorf("sqlite: getting book %d: %w", id, err)
	}

	book.ImageData = imageData
	book.ImageName = imageName.String
	book.ImageContentType = imageType.String
	book.User = user.String

	return &book, nil
}

// List returns the catalog metadata in id order.
//
// The blob columns are deliberately not selected: the library page and the
// JSON API only need the text fields, and pulling every audio file into
// memory to render a list would be absurd. image_name stands in as the
// "has a cover" flag for templates.
func (db *BookDB) List(ctx context.Context) ([]model.Book, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, author, description,
		        file_name, file_content_type, image_name, user
		 FROM books ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing books: %w", err)
	}
	// rows holds a pool connection until closed — leaking these hangs the app.
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var (
			book      model.Book
			imageName sql.NullString
			user      sql.NullString
		)
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Description,
			&book.FileName,
			&book.FileContentType,
			&imageName,
			&user,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning book row: %w", err)
		}
		book.ImageName = imageName.String
		book.User = user.String
		books = append(books, book)
	}

	// rows.Err catches failures that happened during iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating books: %w", err)
	}

	return books, nil
}

// Delete removes a book. Returns apperror.ErrNotFound if no row matched,
// which makes a second delete of the same id observably different from the
// first.
func (db *BookDB) Delete(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting book %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of book %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("book", id)
	}

	return nil
}

// FileBlob loads the audio payload for one book.
//
// The whole blob is read into memory in one Scan — there is no chunked read
// path. Returns apperror.ErrNotFound when the book doesn't exist. The file
// columns are NOT NULL so an existing book always has audio.
func (db *BookDB) FileBlob(ctx context.Context, id int64) (*repository.Blob, error) {
	var blob repository.Blob

	err := db.conn.QueryRowContext(ctx,
		`SELECT file_data, file_content_type, file_name FROM books WHERE id = ?`,
		id,
	).Scan(&blob.Data, &blob.ContentType, &blob.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("book", id)
		}
		return nil, fmt.Errorf("sqlite: reading audio for book %d: %w", id, err)
	}
	if len(blob.Data) == 0 {
		return nil, apperror.NotFound("audio", id)
	}

	return &blob, nil
}

// ImageBlob loads the cover image for one book.
// Returns apperror.ErrNotFound when the book doesn't exist or was created
// without a cover.
func (db *BookDB) ImageBlob(ctx context.Context, id int64) (*repository.Blob, error) {
	var (
		data        []byte
		contentType sql.NullString
		name        sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT image_data, image_content_type, image_name FROM books WHERE id = ?`,
		id,
	).Scan(&data, &contentType, &name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("book", id)
		}
		return nil, fmt.Errorf("sqlite: reading image for book %d: %w", id, err)
	}
	if len(data) == 0 {
		return nil, apperror.NotFound("image", id)
	}

	return &repository.Blob{
		Data:        data,
		ContentType: contentType.String,
		Name:        name.String,
	}, nil
}

// nullString maps "" to NULL for nullable TEXT columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullBytes maps an empty slice to NULL for nullable BLOB columns.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
