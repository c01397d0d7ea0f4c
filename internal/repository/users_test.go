package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newUserRepo(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresUserRepository(db), mock
}

func TestCreateUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs("alice", "alice@example.com", []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.CreateUser(context.Background(), "alice", "alice@example.com", []byte("hash"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserByUsername(t *testing.T) {
	repo, mock := newUserRepo(t)
	joined := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, username, email, password_hash, is_admin, date_joined FROM users WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "password_hash", "is_admin", "date_joined"}).
			AddRow(int64(1), "alice", "alice@example.com", []byte("hash"), true, joined))

	user, err := repo.UserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}
	if user.ID != 1 || !user.IsAdmin || !user.DateJoined.Equal(joined) {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserByID_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, username, email, password_hash, is_admin, date_joined FROM users WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "password_hash", "is_admin", "date_joined"}))

	if _, err := repo.UserByID(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsers_Aggregates(t *testing.T) {
	repo, mock := newUserRepo(t)
	joined := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT u\.id, u\.username, u\.email, u\.is_admin, u\.date_joined`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "is_admin", "date_joined", "count", "sum"}).
			AddRow(int64(1), "alice", "a@example.com", true, joined, 3, int64(4096)).
			AddRow(int64(2), "bob", "b@example.com", false, joined, 0, int64(0)))

	records, err := repo.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].TotalFiles != 3 || records[0].TotalStorage != 4096 {
		t.Fatalf("unexpected aggregates: %+v", records[0])
	}
	if records[1].TotalFiles != 0 || records[1].TotalStorage != 0 {
		t.Fatalf("empty account must aggregate to zero: %+v", records[1])
	}
}

func TestDeleteUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteUser(context.Background(), 5); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteUser(context.Background(), 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}
}

func TestSetAdmin(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_admin = $2 WHERE id = $1`)).
		WithArgs(int64(2), true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetAdmin(context.Background(), 2, true); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
