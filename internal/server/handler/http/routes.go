package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/Yahmice/CloudStorage/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the storage API.
//
// Routes:
//
//	POST   /api/register/                 → authHandler.Register (public)
//	POST   /api/login/                    → authHandler.Login (public)
//	POST   /api/logout/                   → authHandler.Logout
//	GET    /api/profile/                  → authHandler.Profile
//	GET    /api/files/                    → filesHandler.List
//	POST   /api/files/upload/             → filesHandler.Upload
//	PATCH  /api/files/{id}/rename/        → filesHandler.Rename
//	DELETE /api/files/{id}/               → filesHandler.Delete
//	GET    /api/files/{id}/download/      → filesHandler.Download
//	GET    /api/files/{id}/share/         → filesHandler.Share
//	GET    /api/users/                    → usersHandler.List (admin)
//	DELETE /api/users/{id}/               → usersHandler.Delete (admin)
//	POST   /api/users/{id}/toggle_admin/  → usersHandler.ToggleAdmin (admin)
//	GET    /shared/{token}                → filesHandler.Shared (public)
//	GET    /api/files/shared/{token}/     → filesHandler.Shared (public)
//
// The protected group requires the session cookie and, on mutating
// methods, the double-submit anti-forgery token.
func NewRouter(
	authHandler *AuthHandler,
	filesHandler *FilesHandler,
	usersHandler *UsersHandler,
	store sessions.Store,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints: the anti-forgery cookie is only issued on
		// login, so these cannot be gated on it.
		r.Post("/register/", authHandler.Register)
		r.Post("/login/", authHandler.Login)
		r.Get("/files/shared/{token}/", filesHandler.Shared)

		// Protected group: session required, token required on writes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(store))
			r.Use(middleware.CSRF)

			r.Post("/logout/", authHandler.Logout)
			r.Get("/profile/", authHandler.Profile)

			r.Get("/files/", filesHandler.List)
			r.Post("/files/upload/", filesHandler.Upload)
			r.Patch("/files/{id}/rename/", filesHandler.Rename)
			r.Delete("/files/{id}/", filesHandler.Delete)
			r.Get("/files/{id}/download/", filesHandler.Download)
			r.Get("/files/{id}/share/", filesHandler.Share)

			r.Get("/users/", usersHandler.List)
			r.Delete("/users/{id}/", usersHandler.Delete)
			r.Post("/users/{id}/toggle_admin/", usersHandler.ToggleAdmin)
		})
	})

	// Public share links composed by the client.
	r.Get("/shared/{token}", filesHandler.Shared)

	return r
}
