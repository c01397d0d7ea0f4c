package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Yahmice/CloudStorage/internal/models"
)

// ShareTTL bounds the validity of an issued share link.
const ShareTTL = 7 * 24 * time.Hour

// ErrFileTooLarge is returned when an upload exceeds the server ceiling.
type ErrFileTooLarge struct {
	Size, Limit int64
}

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file of %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}

// FileRepository defines the persistence operations required by the
// file service.
type FileRepository interface {
	SaveFile(ctx context.Context, f models.StoredFile) error
	FilesByOwner(ctx context.Context, ownerID int64) ([]models.StoredFile, error)
	FileByID(ctx context.Context, id string) (models.StoredFile, error)
	FileContent(ctx context.Context, id string) ([]byte, error)
	RenameFile(ctx context.Context, id, name string) error
	DeleteFile(ctx context.Context, id string) error
	TouchDownload(ctx context.Context, id string, at time.Time) error
	SetShare(ctx context.Context, id, token string, expiry time.Time) error
	FileByShareToken(ctx context.Context, token string, now time.Time) (models.StoredFile, error)
}

// FileService implements the storage operations with the owner-or-admin
// authorization rule.
type FileService struct {
	repo    FileRepository
	users   UserRepository
	maxSize int64
}

// NewFileService constructs a FileService. maxSize is the upload
// ceiling in bytes.
func NewFileService(repo FileRepository, users UserRepository, maxSize int64) *FileService {
	return &FileService{repo: repo, users: users, maxSize: maxSize}
}

// List returns the file records of subjectID's storage as seen by the
// actor. A zero subject means the actor's own storage; viewing another
// user requires the admin role.
func (s *FileService) List(ctx context.Context, actorID, subjectID int64) ([]models.FileRecord, error) {
	actor, err := s.users.UserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	ownerID := actorID
	if subjectID != 0 && subjectID != actorID {
		if !actor.IsAdmin {
			return nil, ErrForbidden
		}
		ownerID = subjectID
	}
	owner, err := s.users.UserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	files, err := s.repo.FilesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	records := make([]models.FileRecord, 0, len(files))
	for _, f := range files {
		records = append(records, toRecord(f, owner, actorID))
	}
	return records, nil
}

// Upload stores a new file owned by the actor.
func (s *FileService) Upload(ctx context.Context, actorID int64, name, comment string, content []byte) (models.FileRecord, error) {
	if int64(len(content)) > s.maxSize {
		return models.FileRecord{}, &ErrFileTooLarge{Size: int64(len(content)), Limit: s.maxSize}
	}
	actor, err := s.users.UserByID(ctx, actorID)
	if err != nil {
		return models.FileRecord{}, err
	}
	f := models.StoredFile{
		ID:           uuid.NewString(),
		OriginalName: name,
		Name:         name,
		Comment:      comment,
		Size:         int64(len(content)),
		OwnerID:      actorID,
		UploadDate:   time.Now().UTC(),
		Content:      content,
	}
	if err := s.repo.SaveFile(ctx, f); err != nil {
		return models.FileRecord{}, fmt.Errorf("save file: %w", err)
	}
	return toRecord(f, actor, actorID), nil
}

// Rename changes the display name of a record the actor may mutate.
func (s *FileService) Rename(ctx context.Context, actorID int64, fileID, newName string) (models.FileRecord, error) {
	f, err := s.authorize(ctx, actorID, fileID)
	if err != nil {
		return models.FileRecord{}, err
	}
	if err := s.repo.RenameFile(ctx, fileID, newName); err != nil {
		return models.FileRecord{}, err
	}
	f.Name = newName
	owner, err := s.users.UserByID(ctx, f.OwnerID)
	if err != nil {
		return models.FileRecord{}, err
	}
	return toRecord(f, owner, actorID), nil
}

// Delete removes a record the actor may mutate.
func (s *FileService) Delete(ctx context.Context, actorID int64, fileID string) error {
	if _, err := s.authorize(ctx, actorID, fileID); err != nil {
		return err
	}
	return s.repo.DeleteFile(ctx, fileID)
}

// Download returns a record with its content and stamps the download
// time.
func (s *FileService) Download(ctx context.Context, actorID int64, fileID string) (models.StoredFile, []byte, error) {
	f, err := s.authorize(ctx, actorID, fileID)
	if err != nil {
		return models.StoredFile{}, nil, err
	}
	content, err := s.repo.FileContent(ctx, fileID)
	if err != nil {
		return models.StoredFile{}, nil, err
	}
	if err := s.repo.TouchDownload(ctx, fileID, time.Now().UTC()); err != nil {
		return models.StoredFile{}, nil, err
	}
	return f, content, nil
}

// Share returns a share token for the record, issuing a fresh one when
// none is valid. The token stays resolvable for ShareTTL.
func (s *FileService) Share(ctx context.Context, actorID int64, fileID string) (string, error) {
	f, err := s.authorize(ctx, actorID, fileID)
	if err != nil {
		return "", err
	}
	if f.ShareToken != "" && f.ShareExpiry != nil && f.ShareExpiry.After(time.Now()) {
		return f.ShareToken, nil
	}
	token := uuid.NewString()
	if err := s.repo.SetShare(ctx, fileID, token, time.Now().UTC().Add(ShareTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveShared returns the record and content behind an unexpired share
// token. No authentication is required; holding the token is enough.
func (s *FileService) ResolveShared(ctx context.Context, token string) (models.StoredFile, []byte, error) {
	f, err := s.repo.FileByShareToken(ctx, token, time.Now())
	if err != nil {
		return models.StoredFile{}, nil, err
	}
	content, err := s.repo.FileContent(ctx, f.ID)
	if err != nil {
		return models.StoredFile{}, nil, err
	}
	if err := s.repo.TouchDownload(ctx, f.ID, time.Now().UTC()); err != nil {
		return models.StoredFile{}, nil, err
	}
	return f, content, nil
}

// authorize loads the record and applies the mutation rule: the actor
// must own the record or be an admin.
func (s *FileService) authorize(ctx context.Context, actorID int64, fileID string) (models.StoredFile, error) {
	f, err := s.repo.FileByID(ctx, fileID)
	if err != nil {
		return models.StoredFile{}, err
	}
	if f.OwnerID == actorID {
		return f, nil
	}
	actor, err := s.users.UserByID(ctx, actorID)
	if err != nil {
		return models.StoredFile{}, err
	}
	if !actor.IsAdmin {
		return models.StoredFile{}, ErrForbidden
	}
	return f, nil
}

func toRecord(f models.StoredFile, owner models.User, actorID int64) models.FileRecord {
	return models.FileRecord{
		ID:            f.ID,
		OriginalName:  f.OriginalName,
		Name:          f.Name,
		Comment:       f.Comment,
		Size:          f.Size,
		OwnerID:       f.OwnerID,
		OwnerUsername: owner.Username,
		UploadDate:    f.UploadDate,
		LastDownload:  f.LastDownload,
		ShareToken:    f.ShareToken,
		IsOwner:       f.OwnerID == actorID,
	}
}
