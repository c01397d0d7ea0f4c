package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Yahmice/CloudStorage/internal/middleware"
	"github.com/Yahmice/CloudStorage/internal/models"
)

// FileStore defines the storage operations required by the file
// handlers.
type FileStore interface {
	List(ctx context.Context, actorID, subjectID int64) ([]models.FileRecord, error)
	Upload(ctx context.Context, actorID int64, name, comment string, content []byte) (models.FileRecord, error)
	Rename(ctx context.Context, actorID int64, fileID, newName string) (models.FileRecord, error)
	Delete(ctx context.Context, actorID int64, fileID string) error
	Download(ctx context.Context, actorID int64, fileID string) (models.StoredFile, []byte, error)
	Share(ctx context.Context, actorID int64, fileID string) (string, error)
	ResolveShared(ctx context.Context, token string) (models.StoredFile, []byte, error)
}

// FilesHandler handles the /api/files/ endpoints and public share
// resolution.
type FilesHandler struct {
	// Files performs the underlying storage operations.
	Files FileStore
	// MaxUploadSize bounds the accepted request body on upload.
	MaxUploadSize int64
}

// List handles GET /api/files/?user_id=. The optional user_id scopes the
// listing to another user's storage (admin only).
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	var subjectID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		subjectID = id
	}
	records, err := h.Files.List(r.Context(), middleware.UserIDFromContext(r.Context()), subjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Upload handles POST /api/files/upload/ with multipart fields "file"
// and "comment".
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave headroom for the multipart framing around the size limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize+64*1024)
	if err := r.ParseMultipartForm(h.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body or file too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "file name is required")
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	record, err := h.Files.Upload(
		r.Context(),
		middleware.UserIDFromContext(r.Context()),
		header.Filename,
		r.FormValue("comment"),
		content,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Rename handles PATCH /api/files/{id}/rename/ with body {"name": ...}.
func (h *FilesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "new file name is required")
		return
	}
	record, err := h.Files.Rename(
		r.Context(),
		middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "id"),
		req.Name,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/files/{id}/.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Files.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download handles GET /api/files/{id}/download/, streaming the blob as
// an attachment.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	record, content, err := h.Files.Download(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	serveAttachment(w, record.Name, content)
}

// Share handles GET /api/files/{id}/share/, returning the share token.
func (h *FilesHandler) Share(w http.ResponseWriter, r *http.Request) {
	token, err := h.Files.Share(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"share_link": token})
}

// Shared handles the public share resolution endpoints. Anyone holding
// an unexpired token gets the file; expired or unknown tokens are 404.
func (h *FilesHandler) Shared(w http.ResponseWriter, r *http.Request) {
	record, content, err := h.Files.ResolveShared(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found or link expired")
		return
	}
	serveAttachment(w, record.Name, content)
}

func serveAttachment(w http.ResponseWriter, name string, content []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+url.QueryEscape(name)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	_, _ = w.Write(content)
}
