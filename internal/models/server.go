package models

import "time"

// User is the server-side account record.
type User struct {
	// ID is the unique numeric identifier of the account.
	ID int64
	// Username is the login name.
	Username string
	// Email is the contact address.
	Email string
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash []byte
	// IsAdmin marks administrator accounts.
	IsAdmin bool
	// DateJoined is when the account was registered.
	DateJoined time.Time
}

// StoredFile is the server-side file record, including the blob.
type StoredFile struct {
	// ID is the UUID of the file.
	ID string
	// OriginalName is the name the file was uploaded under.
	OriginalName string
	// Name is the current display name.
	Name string
	// Comment is the user note attached on upload.
	Comment string
	// Size is the blob size in bytes.
	Size int64
	// OwnerID references the owning user.
	OwnerID int64
	// UploadDate is when the file was stored.
	UploadDate time.Time
	// LastDownload is the last fetch time, nil if never fetched.
	LastDownload *time.Time
	// ShareToken is the public share identifier, empty until issued.
	ShareToken string
	// ShareExpiry bounds the share token's validity.
	ShareExpiry *time.Time
	// Content is the stored blob.
	Content []byte
}
