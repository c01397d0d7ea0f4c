// Package http provides the HTTP handlers and routing of the storage
// API: authentication, file operations and admin user management.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/Yahmice/CloudStorage/internal/middleware"
	"github.com/Yahmice/CloudStorage/internal/models"
)

// Accounts defines the account operations required by the auth handlers.
type Accounts interface {
	// Register creates a new account.
	Register(ctx context.Context, username, email, password string) (models.User, error)
	// Authenticate verifies a username/password pair.
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	// Profile returns the account of the given user id.
	Profile(ctx context.Context, id int64) (models.User, error)
}

// AuthHandler handles registration, login, logout and the profile
// endpoint.
type AuthHandler struct {
	// Accounts performs the underlying account operations.
	Accounts Accounts
	// Sessions is the session cookie store.
	Sessions sessions.Store
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Register handles POST /api/register/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if req.Password != req.PasswordConfirm {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	user, err := h.Accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/login/. On success it establishes the session
// cookie and issues a fresh anti-forgery token cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	user, err := h.Accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	session, _ := h.Sessions.Get(r, middleware.SessionCookie)
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}
	middleware.SetCSRFCookie(w, uuid.NewString())

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// Logout handles POST /api/logout/, ending the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Sessions.Get(r, middleware.SessionCookie)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to end session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Profile handles GET /api/profile/, reporting the current identity.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	user, err := h.Accounts.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Profile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	})
}
