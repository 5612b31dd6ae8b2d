// Package main is the entry point for the audiobook library server.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand everything to internal/server. All real logic lives in the
// imported packages so it stays testable.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aaa221132/audiobook-library/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8000
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// Template and static dirs resolve relative to the working directory,
	// which is the project root under `go run ./cmd/server`.
	templateDir, _ := filepath.Abs("web/templates")
	staticDir, _ := filepath.Abs("web/static")

	// The catalog and the credentials are two separate database files, both
	// under data/ by default. BOOKS_DB_PATH / USERS_DB_PATH override for
	// deployments (e.g. /var/lib/audiobooks/).
	booksDB := "data/audiobooks.db"
	if env := os.Getenv("BOOKS_DB_PATH"); env != "" {
		booksDB = env
	}
	usersDB := "data/users.db"
	if env := os.Getenv("USERS_DB_PATH"); env != "" {
		usersDB = env
	}

	for _, path := range []string{booksDB, usersDB} {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	cfg := server.Config{
		Port:        port,
		TemplateDir: templateDir,
		StaticDir:   staticDir,
		BooksDBPath: booksDB,
		UsersDBPath: usersDB,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
