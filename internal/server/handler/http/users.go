package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Yahmice/CloudStorage/internal/middleware"
	"github.com/Yahmice/CloudStorage/internal/models"
)

// Roster defines the admin user-management operations required by the
// users handlers. Role enforcement lives in the service.
type Roster interface {
	ListUsers(ctx context.Context, actorID int64) ([]models.UserRecord, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
	ToggleAdmin(ctx context.Context, actorID, id int64) (bool, error)
}

// UsersHandler handles the admin-only /api/users/ endpoints.
type UsersHandler struct {
	// Users performs the underlying roster operations.
	Users Roster
}

// List handles GET /api/users/.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.Users.ListUsers(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Delete handles DELETE /api/users/{id}/.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.Users.DeleteUser(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleAdmin handles POST /api/users/{id}/toggle_admin/, flipping the
// admin flag and reporting the new value.
func (h *UsersHandler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	isAdmin, err := h.Users.ToggleAdmin(r.Context(), middleware.UserIDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"is_admin": isAdmin,
	})
}
