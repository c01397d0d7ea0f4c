// Package models defines the core data structures exchanged with the
// file-storage API.
package models

import "time"

// Session describes the identity the backend currently associates with
// the cookie jar. It is re-derived from /api/profile/ on every mount and
// never persisted.
type Session struct {
	// Authenticated is true when the backend recognised the session cookie.
	Authenticated bool
	// IsAdmin mirrors the is_admin flag of the profile response.
	IsAdmin bool
	// Username is the login name of the authenticated user.
	Username string
	// Email is the contact address of the authenticated user.
	Email string
}

// Profile is the wire form of GET /api/profile/.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// FileRecord represents a single stored file as reported by the server.
// The client never mutates a record in place; after any write the whole
// set is re-fetched.
type FileRecord struct {
	// ID is the opaque identifier of the file (a UUID on the wire).
	ID string `json:"id"`
	// OriginalName is the name the file was uploaded under.
	OriginalName string `json:"original_name"`
	// Name is the current display name, changed by rename.
	Name string `json:"name"`
	// Comment holds the user-provided note attached on upload.
	Comment string `json:"comment"`
	// Size is the stored size in bytes.
	Size int64 `json:"size"`
	// OwnerID is the numeric id of the owning user.
	OwnerID int64 `json:"owner"`
	// OwnerUsername is the login of the owning user.
	OwnerUsername string `json:"owner_username"`
	// UploadDate is when the file was stored.
	UploadDate time.Time `json:"upload_date"`
	// LastDownload is the last time the file was fetched, nil if never.
	LastDownload *time.Time `json:"last_download"`
	// ShareToken is the public share identifier, empty until one is issued.
	ShareToken string `json:"share_link"`
	// IsOwner reports whether the requesting session owns the record.
	IsOwner bool `json:"is_owner"`
}

// UserRecord is a roster entry of the admin user list.
type UserRecord struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	DateJoined   time.Time `json:"date_joined"`
	TotalFiles   int       `json:"total_files"`
	TotalStorage int64     `json:"total_storage"`
}

// ViewSubject identifies whose files the dashboard currently shows.
// The zero value means "self".
type ViewSubject struct {
	// UserID is the admin-selected user id, 0 for self.
	UserID int64
	// Username is a display hint carried along with the navigation,
	// may be empty even when UserID is set.
	Username string
}

// Self reports whether the subject is the acting user's own storage.
func (v ViewSubject) Self() bool { return v.UserID == 0 }
