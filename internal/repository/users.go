// Package repository provides persistence implementations for the user
// and file stores, backed by PostgreSQL, plus an in-memory variant used
// by tests and the default development server.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Yahmice/CloudStorage/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// PostgresUserRepository implements user persistence on PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a user repository over the given
// database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a new account and returns its id.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, username, email string, passwordHash []byte) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		username, email, passwordHash,
	).Scan(&id)
	return id, err
}

// UserByUsername fetches an account by login name.
func (r *PostgresUserRepository) UserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.scanUser(r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, email, password_hash, is_admin, date_joined FROM users WHERE username = $1`,
		username,
	))
}

// UserByID fetches an account by id.
func (r *PostgresUserRepository) UserByID(ctx context.Context, id int64) (models.User, error) {
	return r.scanUser(r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, email, password_hash, is_admin, date_joined FROM users WHERE id = $1`,
		id,
	))
}

// ListUsers returns every account with its file count and total storage.
func (r *PostgresUserRepository) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.email, u.is_admin, u.date_joined,
		       COUNT(f.id), COALESCE(SUM(f.size), 0)
		  FROM users u
		  LEFT JOIN files f ON f.owner_id = u.id
		 GROUP BY u.id
		 ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.UserRecord
	for rows.Next() {
		var rec models.UserRecord
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Email, &rec.IsAdmin,
			&rec.DateJoined, &rec.TotalFiles, &rec.TotalStorage); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteUser removes an account; its files go with it via the foreign
// key cascade.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAdmin updates the admin flag of an account.
func (r *PostgresUserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET is_admin = $2 WHERE id = $1`, id, isAdmin)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.DateJoined)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}
