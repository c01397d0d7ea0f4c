// Package files implements typed CRUD operations against the remote file
// collection. Every operation is a single request/response round trip
// with no retry; failures are surfaced to the caller.
package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Yahmice/CloudStorage/internal/client/transport"
	"github.com/Yahmice/CloudStorage/internal/models"
)

// Client performs file operations for the acting session, optionally
// scoped to another user's collection when an admin views it.
type Client struct {
	api     *transport.Client
	maxSize int64
}

// New returns a files client. maxSize is the client-side upload ceiling
// in bytes; oversize uploads are rejected before transmission.
func New(api *transport.Client, maxSize int64) *Client {
	return &Client{api: api, maxSize: maxSize}
}

// MaxSize returns the upload ceiling in bytes.
func (c *Client) MaxSize() int64 { return c.maxSize }

// List fetches the file collection. subjectID scopes the listing to
// another user's files (admin only); zero means the caller's own set.
func (c *Client) List(ctx context.Context, subjectID int64) ([]models.FileRecord, error) {
	path := "/api/files/"
	if subjectID != 0 {
		path += "?user_id=" + strconv.FormatInt(subjectID, 10)
	}
	resp, err := c.api.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var records []models.FileRecord
	if err := transport.DecodeJSON(resp, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Upload stores a new file with an optional comment. The size ceiling is
// enforced locally: an oversize blob never reaches the wire, and the
// rejection message reports the measured size in MiB.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader, size int64, comment string) error {
	if name == "" {
		return &transport.ValidationError{Reason: "file name is required"}
	}
	if size > c.maxSize {
		return &transport.ValidationError{Reason: fmt.Sprintf(
			"file exceeds the %s limit, got %.2f MiB",
			formatLimit(c.maxSize), float64(size)/(1024*1024),
		)}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, io.LimitReader(content, size)); err != nil {
		return fmt.Errorf("read file content: %w", err)
	}
	if err := mw.WriteField("comment", comment); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := c.api.Send(ctx, http.MethodPost, "/api/files/upload/", mw.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	return transport.Discard(resp)
}

// Rename changes the display name of a record. Blank names are rejected
// locally before any request is issued. Renaming to the current name is
// a valid no-op on the server.
func (c *Client) Rename(ctx context.Context, id, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return &transport.ValidationError{Reason: "new file name must not be empty"}
	}
	resp, err := c.api.SendJSON(ctx, http.MethodPatch, "/api/files/"+id+"/rename/", map[string]string{
		"name": newName,
	})
	if err != nil {
		return err
	}
	return transport.Discard(resp)
}

// Delete removes a record permanently. Callers are responsible for the
// user-facing confirmation step; this method issues the request
// unconditionally.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.api.Send(ctx, http.MethodDelete, "/api/files/"+id+"/", "", nil)
	if err != nil {
		return err
	}
	return transport.Discard(resp)
}

// Download fetches the file body and materialises it under dir, named by
// the server's content disposition (falling back to the record id). The
// partial file is removed when the transfer fails, so no half-written
// artifact outlives the call. It returns the path written.
func (c *Client) Download(ctx context.Context, id, dir string) (string, error) {
	resp, err := c.api.Get(ctx, "/api/files/"+id+"/download/")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := transport.Error(resp); err != nil {
		return "", err
	}

	name := dispositionFilename(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = id
	}
	path := filepath.Join(dir, filepath.Base(name))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// CanMutate reports whether the UI should expose rename/delete controls
// for the record. This mirrors the server rule (owner or admin) but is a
// UX guard only; the authoritative check stays server-side.
func CanMutate(record models.FileRecord, session models.Session) bool {
	return record.IsOwner || session.IsAdmin
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	if name := params["filename"]; name != "" {
		if decoded, err := url.QueryUnescape(name); err == nil {
			return decoded
		}
		return name
	}
	return ""
}

func formatLimit(limit int64) string {
	if limit%(1024*1024) == 0 {
		return strconv.FormatInt(limit/(1024*1024), 10) + " MiB"
	}
	return strconv.FormatInt(limit, 10) + " bytes"
}
