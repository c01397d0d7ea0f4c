package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Yahmice/CloudStorage/internal/models"
)

// MemoryStore is an in-memory implementation of both the user and file
// repositories. It backs the development server and the test harness.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
	files  map[string]models.StoredFile
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		users:  make(map[int64]models.User),
		files:  make(map[string]models.StoredFile),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, username, email string, passwordHash []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.users[id] = models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		DateJoined:   time.Now().UTC(),
	}
	return id, nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryStore) UserByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]models.UserRecord, 0, len(s.users))
	for _, u := range s.users {
		rec := models.UserRecord{
			ID:         u.ID,
			Username:   u.Username,
			Email:      u.Email,
			IsAdmin:    u.IsAdmin,
			DateJoined: u.DateJoined,
		}
		for _, f := range s.files {
			if f.OwnerID == u.ID {
				rec.TotalFiles++
				rec.TotalStorage += f.Size
			}
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	for fid, f := range s.files {
		if f.OwnerID == id {
			delete(s.files, fid)
		}
	}
	return nil
}

func (s *MemoryStore) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.IsAdmin = isAdmin
	s.users[id] = u
	return nil
}

func (s *MemoryStore) SaveFile(_ context.Context, f models.StoredFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[f.ID] = f
	return nil
}

func (s *MemoryStore) FilesByOwner(_ context.Context, ownerID int64) ([]models.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var files []models.StoredFile
	for _, f := range s.files {
		if f.OwnerID == ownerID {
			f.Content = nil
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadDate.After(files[j].UploadDate)
	})
	return files, nil
}

func (s *MemoryStore) FileByID(_ context.Context, id string) (models.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return models.StoredFile{}, ErrNotFound
	}
	f.Content = nil
	return f, nil
}

func (s *MemoryStore) FileContent(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f.Content, nil
}

func (s *MemoryStore) RenameFile(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return ErrNotFound
	}
	f.Name = name
	s.files[id] = f
	return nil
}

func (s *MemoryStore) DeleteFile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return ErrNotFound
	}
	delete(s.files, id)
	return nil
}

func (s *MemoryStore) TouchDownload(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return ErrNotFound
	}
	f.LastDownload = &at
	s.files[id] = f
	return nil
}

func (s *MemoryStore) SetShare(_ context.Context, id, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return ErrNotFound
	}
	f.ShareToken = token
	f.ShareExpiry = &expiry
	s.files[id] = f
	return nil
}

func (s *MemoryStore) FileByShareToken(_ context.Context, token string, now time.Time) (models.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.ShareToken == token && f.ShareExpiry != nil && f.ShareExpiry.After(now) {
			f.Content = nil
			return f, nil
		}
	}
	return models.StoredFile{}, ErrNotFound
}
