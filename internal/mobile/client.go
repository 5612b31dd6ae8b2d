// Package mobile implements the companion catalog client: a thin HTTP
// consumer of the library's read-only JSON API, rendered as a terminal UI.
//
// The client never mutates server state — it only reads /api/books and
// /image/{id}.
package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aaa221132/audiobook-library/internal/model"
)

// Client talks to one library server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given server base URL, e.g.
// "http://127.0.0.1:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// The catalog response is small, but covers can be large; one
		// generous timeout covers both endpoints.
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Books fetches the catalog from GET /api/books.
func (c *Client) Books(ctx context.Context) ([]model.BookSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/books", nil)
	if err != nil {
		return nil, fmt.Errorf("mobile: building catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mobile: fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mobile: catalog request returned %s", resp.Status)
	}

	var books []model.BookSummary
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, fmt.Errorf("mobile: decoding catalog: %w", err)
	}

	return books, nil
}

// Cover describes a fetched cover image.
type Cover struct {
	Bytes       int
	ContentType string
}

// Image fetches the cover for one book from GET /image/{id}.
//
// ok is false when the server answers 404 — books uploaded without a
// cover are normal, not an error.
func (c *Client) Image(ctx context.Context, id int64) (cover Cover, ok bool, err error) {
	url := fmt.Sprintf("%s/image/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Cover{}, false, fmt.Errorf("mobile: building image request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Cover{}, false, fmt.Errorf("mobile: fetching image for book %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Cover{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Cover{}, false, fmt.Errorf("mobile: image request returned %s", resp.Status)
	}

	// A terminal can't paint the image; what the detail view shows is that
	// a cover exists and how big it is, so the body is drained for its size.
	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return Cover{}, false, fmt.Errorf("mobile: reading image for book %d: %w", id, err)
	}

	return Cover{
		Bytes:       int(n),
		ContentType: resp.Header.Get("Content-Type"),
	}, true, nil
}
