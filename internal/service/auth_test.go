package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Yahmice/CloudStorage/internal/repository"
)

func newAuth(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewAuthService(store), store
}

func register(t *testing.T, s *AuthService, username string) int64 {
	t.Helper()
	user, err := s.Register(context.Background(), username, username+"@example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return user.ID
}

func makeAdmin(t *testing.T, store *repository.MemoryStore, id int64) {
	t.Helper()
	if err := store.SetAdmin(context.Background(), id, true); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	s, store := newAuth(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "alice@example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	stored, err := store.UserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("UserByID failed: %v", err)
	}
	if string(stored.PasswordHash) == "Passw0rd!" {
		t.Fatal("password must not be stored in plain text")
	}
	if bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("Passw0rd!")) != nil {
		t.Fatal("stored hash must verify against the password")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()

	register(t, s, "alice")
	if _, err := s.Register(ctx, "alice", "other@example.com", "Passw0rd!"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()
	register(t, s, "alice")

	if _, err := s.Authenticate(ctx, "alice", "Passw0rd!"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "nobody", "Passw0rd!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestListUsers_AdminOnly(t *testing.T) {
	s, store := newAuth(t)
	ctx := context.Background()
	adminID := register(t, s, "alice")
	memberID := register(t, s, "bob")
	makeAdmin(t, store, adminID)

	if _, err := s.ListUsers(ctx, memberID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a member, got %v", err)
	}

	users, err := s.ListUsers(ctx, adminID)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestDeleteUser_AdminOnly(t *testing.T) {
	s, store := newAuth(t)
	ctx := context.Background()
	adminID := register(t, s, "alice")
	memberID := register(t, s, "bob")
	makeAdmin(t, store, adminID)

	if err := s.DeleteUser(ctx, memberID, adminID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := s.DeleteUser(ctx, adminID, memberID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := store.UserByID(ctx, memberID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("deleted user must be gone")
	}
}

func TestToggleAdmin_FlipsAndReports(t *testing.T) {
	s, store := newAuth(t)
	ctx := context.Background()
	adminID := register(t, s, "alice")
	memberID := register(t, s, "bob")
	makeAdmin(t, store, adminID)

	isAdmin, err := s.ToggleAdmin(ctx, adminID, memberID)
	if err != nil {
		t.Fatalf("ToggleAdmin failed: %v", err)
	}
	if !isAdmin {
		t.Fatal("first toggle must grant the role")
	}

	isAdmin, err = s.ToggleAdmin(ctx, adminID, memberID)
	if err != nil {
		t.Fatalf("ToggleAdmin failed: %v", err)
	}
	if isAdmin {
		t.Fatal("second toggle must revoke the role")
	}
}
