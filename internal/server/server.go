// Package server wires the application together: stores, services,
// handlers, routes, and the HTTP server lifecycle.
//
// This is the composition root — every dependency is constructed and
// connected here (or in main.go), never via package-level globals. Each
// layer receives only what it needs: services get repository interfaces,
// handlers get services, nothing below the handler knows HTTP exists.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aaa221132/audiobook-library/internal/auth"
	"github.com/aaa221132/audiobook-library/internal/handler"
	"github.com/aaa221132/audiobook-library/internal/middleware"
	sqliteRepo "github.com/aaa221132/audiobook-library/internal/repository/sqlite"
	"github.com/aaa221132/audiobook-library/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	BooksDBPath string // catalog database (books + blobs)
	UsersDBPath string // credentials database
}

// Server owns the router and the two database handles. The databases are
// closed during graceful shutdown, after in-flight requests drain.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	books  *sqliteRepo.BookDB
	users  *sqliteRepo.UserDB
}

// New opens both stores and assembles the full dependency chain:
//
//	BookDB  → BookService → BookHandler
//	UserDB  → AuthService → AuthHandler
//
// The two sqlite files are independent by design — the catalog and the
// credentials share no schema and are never joined.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	books, err := sqliteRepo.NewBookDB(cfg.BooksDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	users, err := sqliteRepo.NewUserDB(cfg.UsersDBPath)
	if err != nil {
		books.Close()
		return nil, fmt.Errorf("opening users database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		books:  books,
		users:  users,
	}

	if err := s.setupRoutes(); err != nil {
		books.Close()
		users.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the full route table:
//
//	GET  /, /lib          catalog page
//	GET  /book/{id}       detail page or 404
//	GET  /add             upload form
//	POST /add             create (login cookie required, else 303 /login)
//	POST /delete/{id}     delete or 404
//	GET  /play/{id}       stream audio
//	GET  /image/{id}      stream cover image
//	GET  /api/books       JSON catalog (mobile client)
//	GET/POST /register    registration form / attempt
//	GET/POST /login       login form / attempt
//	GET  /logout          clear cookie, redirect home
//	GET  /del             deletion-capable catalog page
//	GET  /static/*        static assets
func (s *Server) setupRoutes() error {
	// middleware runs in order: request id, real ip, panic recovery, logging
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	render, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	bookService := service.NewBookService(s.books, s.logger)
	bookHandler := handler.NewBookHandler(bookService, render, s.logger)

	authService := service.NewAuthService(s.users, auth.NewPasswordService(), s.logger)
	authHandler := handler.NewAuthHandler(authService, render, s.logger)

	s.router.Get("/", bookHandler.HandleLibrary)
	s.router.Get("/lib", bookHandler.HandleLibrary)
	s.router.Get("/book/{id}", bookHandler.HandleDetail)
	s.router.Get("/add", bookHandler.HandleAddForm)
	s.router.Post("/add", bookHandler.HandleAdd)
	s.router.Post("/delete/{id}", bookHandler.HandleDelete)
	s.router.Get("/play/{id}", bookHandler.HandlePlay)
	s.router.Get("/image/{id}", bookHandler.HandleImage)
	s.router.Get("/del", bookHandler.HandleDeletePage)

	s.router.Get("/api/books", bookHandler.HandleAPIBooks)

	s.router.Get("/register", authHandler.HandleRegisterForm)
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Get("/login", authHandler.HandleLoginForm)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)

	return nil
}

// Router exposes the configured router, mainly for tests that want to
// drive the full route table through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s to
// finish, close both databases.
func (s *Server) Start() error {
	defer s.books.Close()
	defer s.users.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("catalog_db", s.config.BooksDBPath),
			slog.String("users_db", s.config.UsersDBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
