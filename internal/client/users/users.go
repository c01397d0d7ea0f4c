// Package users implements the admin roster operations: listing,
// deleting and promoting/demoting accounts.
package users

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Yahmice/CloudStorage/internal/client/transport"
	"github.com/Yahmice/CloudStorage/internal/models"
)

// Client performs admin-only user management calls. Access control is
// enforced server-side; callers gate the UI through the session role.
type Client struct {
	api *transport.Client
}

// New returns a roster client backed by the given transport.
func New(api *transport.Client) *Client {
	return &Client{api: api}
}

// List fetches all registered users with their storage statistics.
func (c *Client) List(ctx context.Context) ([]models.UserRecord, error) {
	resp, err := c.api.Get(ctx, "/api/users/")
	if err != nil {
		return nil, err
	}
	var records []models.UserRecord
	if err := transport.DecodeJSON(resp, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes an account and all of its files. The user-facing
// confirmation step happens in the controller; this issues the request
// unconditionally.
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.api.Send(ctx, http.MethodDelete, "/api/users/"+strconv.FormatInt(id, 10)+"/", "", nil)
	if err != nil {
		return err
	}
	return transport.Discard(resp)
}

// ToggleAdmin flips the admin flag of an account and returns the new
// value as reported by the server.
func (c *Client) ToggleAdmin(ctx context.Context, id int64) (bool, error) {
	resp, err := c.api.SendJSON(ctx, http.MethodPost, "/api/users/"+strconv.FormatInt(id, 10)+"/toggle_admin/", struct{}{})
	if err != nil {
		return false, err
	}
	var payload struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := transport.DecodeJSON(resp, &payload); err != nil {
		return false, err
	}
	return payload.IsAdmin, nil
}
