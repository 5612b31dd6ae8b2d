// Package service — authentication business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aaa221132/audiobook-library/internal/apperror"
	"github.com/aaa221132/audiobook-library/internal/auth"
	"github.com/aaa221132/audiobook-library/internal/model"
	"github.com/aaa221132/audiobook-library/internal/repository"
)

// AuthService registers users and verifies logins. It sits between the
// HTTP handlers and the credential store:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account.
//
// Fails with apperror.ErrValidation for empty or over-long inputs and with
// apperror.ErrDuplicateUsername when the name is taken. The duplicate check
// is ultimately the store's UNIQUE constraint, so two racing registrations
// of the same name cannot both succeed.
//
// Only the bcrypt hash of the password is ever persisted.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		// Hash only fails on over-long passwords (bcrypt's 72-byte cap) or
		// a broken cost setting; surface the former as a form message.
		return apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	user := &model.User{
		Username:       username,
		HashedPassword: hash,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicateUsername) {
			return err
		}
		s.logger.Error("failed to register user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/auth: registering %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.Int64("id", user.ID),
		slog.String("username", username),
	)

	return nil
}

// Login verifies a username/password pair and returns the identity token —
// which in this system is simply the username, to be carried in the
// user_login cookie.
//
// An unknown username and a wrong password both come back as
// apperror.ErrInvalidCredentials. Collapsing the two stops login responses
// from revealing which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.InvalidCredentials()
		}
		s.logger.Error("failed to look up user for login",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("service/auth: logging in %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.HashedPassword, password); err != nil {
		return "", apperror.InvalidCredentials()
	}

	s.logger.Info("user logged in", slog.String("username", username))

	return user.Username, nil
}
