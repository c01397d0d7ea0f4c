// Package service implements the server-side business logic for
// accounts and file storage, delegating persistence to repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Yahmice/CloudStorage/internal/models"
)

var (
	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserExists is returned when the username or email is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrForbidden is returned when the actor lacks the required role
	// or does not own the target record.
	ErrForbidden = errors.New("operation not permitted")
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email string, passwordHash []byte) (int64, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.UserRecord, error)
	DeleteUser(ctx context.Context, id int64) error
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
}

// AuthService implements registration, login and user management.
type AuthService struct {
	repo UserRepository
}

// NewAuthService constructs an AuthService over the given repository.
func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	if _, err := s.repo.UserByUsername(ctx, username); err == nil {
		return models.User{}, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.repo.CreateUser(ctx, username, email, hash)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return s.repo.UserByID(ctx, id)
}

// Authenticate verifies a username/password pair.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Profile returns the account of the given user id.
func (s *AuthService) Profile(ctx context.Context, id int64) (models.User, error) {
	return s.repo.UserByID(ctx, id)
}

// ListUsers returns the roster. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, actorID int64) ([]models.UserRecord, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}

// DeleteUser removes an account and its files. Admin only.
func (s *AuthService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	return s.repo.DeleteUser(ctx, id)
}

// ToggleAdmin flips the admin flag of an account and returns the new
// value. Admin only.
func (s *AuthService) ToggleAdmin(ctx context.Context, actorID, id int64) (bool, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return false, err
	}
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return false, err
	}
	if err := s.repo.SetAdmin(ctx, id, !user.IsAdmin); err != nil {
		return false, err
	}
	return !user.IsAdmin, nil
}

func (s *AuthService) requireAdmin(ctx context.Context, actorID int64) error {
	actor, err := s.repo.UserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return ErrForbidden
	}
	return nil
}
