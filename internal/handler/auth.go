package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aaa221132/audiobook-library/internal/apperror"
	"github.com/aaa221132/audiobook-library/internal/auth"
	"github.com/aaa221132/audiobook-library/internal/service"
)

// AuthHandler manages registration, login, and logout.
//
// OUTCOME RENDERING:
// Registration and login failures are user mistakes, not HTTP errors —
// the form is re-rendered with a message and status 200. Only a successful
// login changes state: it sets the user_login cookie and redirects home.
type AuthHandler struct {
	users  *service.AuthService
	render *Renderer
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *service.AuthService, render *Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		render: render,
		logger: logger,
	}
}

// HandleRegisterForm renders the empty registration form.
//
// HTTP: GET /register
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "register.html", nil)
}

// HandleRegister attempts a registration and re-renders the form with the
// outcome. It does not log the new user in — they proceed to /login.
//
// HTTP: POST /register, form fields username and password.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not read form", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	err := h.users.Register(r.Context(), username, password)
	switch {
	case err == nil:
		h.render.Render(w, http.StatusOK, "register.html", map[string]any{
			"Notice": "Registration successful — you can log in now",
		})
	case errors.Is(err, apperror.ErrDuplicateUsername):
		h.render.Render(w, http.StatusOK, "register.html", map[string]any{
			"Error": "That username is already taken",
		})
	case errors.Is(err, apperror.ErrValidation):
		var appErr *apperror.AppError
		errors.As(err, &appErr)
		h.render.Render(w, http.StatusOK, "register.html", map[string]any{
			"Error": appErr.Message,
		})
	default:
		h.logger.Error("registration failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleLoginForm renders the empty login form.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "login.html", nil)
}

// HandleLogin verifies credentials. Success stores the identity token in
// the user_login cookie and redirects home with 303; failure re-renders
// the form. Unknown username and wrong password produce the identical
// message.
//
// HTTP: POST /login, form fields username and password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not read form", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			h.render.Render(w, http.StatusOK, "login.html", map[string]any{
				"Error": "Invalid username or password",
			})
			return
		}
		h.logger.Error("login failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	auth.SetLoginCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the login cookie and redirects home.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearLoginCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
