package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Yahmice/CloudStorage/internal/models"
)

// PostgresFileRepository implements file persistence on PostgreSQL. File
// blobs live in the same row as the metadata; listings never load them.
type PostgresFileRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresFileRepository creates a file repository over the given
// database connection.
func NewPostgresFileRepository(db *sql.DB) *PostgresFileRepository {
	return &PostgresFileRepository{DB: db}
}

const fileColumns = `id, owner_id, original_name, name, comment, size, upload_date, last_download, share_token, share_expiry`

// SaveFile inserts a new file record with its content.
func (r *PostgresFileRepository) SaveFile(ctx context.Context, f models.StoredFile) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO files (id, owner_id, original_name, name, comment, size, content, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.OwnerID, f.OriginalName, f.Name, f.Comment, f.Size, f.Content, f.UploadDate,
	)
	return err
}

// FilesByOwner lists the metadata of a user's files, newest first.
func (r *PostgresFileRepository) FilesByOwner(ctx context.Context, ownerID int64) ([]models.StoredFile, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE owner_id = $1 ORDER BY upload_date DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.StoredFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// FileByID fetches a single record without its content.
func (r *PostgresFileRepository) FileByID(ctx context.Context, id string) (models.StoredFile, error) {
	f, err := scanFile(r.DB.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredFile{}, ErrNotFound
	}
	return f, err
}

// FileContent loads the blob of a record.
func (r *PostgresFileRepository) FileContent(ctx context.Context, id string) ([]byte, error) {
	var content []byte
	err := r.DB.QueryRowContext(ctx, `SELECT content FROM files WHERE id = $1`, id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return content, err
}

// RenameFile updates the display name of a record.
func (r *PostgresFileRepository) RenameFile(ctx context.Context, id, name string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE files SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFile removes a record and its blob.
func (r *PostgresFileRepository) DeleteFile(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchDownload records a download timestamp.
func (r *PostgresFileRepository) TouchDownload(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE files SET last_download = $2 WHERE id = $1`, id, at)
	return err
}

// SetShare attaches a share token with an expiry to a record.
func (r *PostgresFileRepository) SetShare(ctx context.Context, id, token string, expiry time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE files SET share_token = $2, share_expiry = $3 WHERE id = $1`,
		id, token, expiry,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FileByShareToken resolves an unexpired share token to its record.
func (r *PostgresFileRepository) FileByShareToken(ctx context.Context, token string, now time.Time) (models.StoredFile, error) {
	f, err := scanFile(r.DB.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE share_token = $1 AND share_expiry > $2`,
		token, now,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredFile{}, ErrNotFound
	}
	return f, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (models.StoredFile, error) {
	var (
		f        models.StoredFile
		comment  sql.NullString
		download sql.NullTime
		token    sql.NullString
		expiry   sql.NullTime
	)
	err := row.Scan(&f.ID, &f.OwnerID, &f.OriginalName, &f.Name, &comment,
		&f.Size, &f.UploadDate, &download, &token, &expiry)
	if err != nil {
		return models.StoredFile{}, err
	}
	f.Comment = comment.String
	if download.Valid {
		t := download.Time
		f.LastDownload = &t
	}
	f.ShareToken = token.String
	if expiry.Valid {
		t := expiry.Time
		f.ShareExpiry = &t
	}
	return f, nil
}
