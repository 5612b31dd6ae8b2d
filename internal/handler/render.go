// Package handler contains the HTTP request handlers: catalog pages, the
// upload form, blob streaming, the JSON API, and the login/registration
// flow. Handlers parse requests and write responses; the business rules
// live in internal/service.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// pages that exist under the template directory, each rendered inside
// base.html. Parsed once at startup — template parsing is expensive,
// executing a parsed template is cheap.
var pageFiles = []string{
	"lib.html",
	"book_detail.html",
	"add.html",
	"register.html",
	"login.html",
	"del.html",
}

// Renderer holds the parsed HTML templates shared by the page handlers.
//
// Each page is parsed together with base.html so it can fill the base
// layout's {{template "content" .}} slot — Go's composition model, like
// "extends" in Jinja2.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses all page templates from templateDir.
// Fails fast at startup if any template is missing or malformed.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		tmpl, err := template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pages[page] = tmpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes a page template into the response.
//
// Form outcomes (duplicate username, bad credentials, missing fields) are
// rendered as in-page messages with status 200, never as HTTP error codes,
// so callers pass the status explicitly.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown template requested", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// templates dereference fields like .User, which errors on a nil root
	if data == nil {
		data = map[string]any{}
	}

	// headers before body — once Execute writes, they're sent
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}
