// Package middleware provides HTTP middlewares for session
// authentication, anti-forgery protection and request logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionCookie is the name of the session cookie.
const SessionCookie = "sessionid"

// Auth enforces session-cookie authentication. Requests without a valid
// session get 401; on success the authenticated user id is stored in the
// request context.
func Auth(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionCookie)
			if err != nil || session.IsNew {
				http.Error(w, `{"error": "authentication required"}`, http.StatusUnauthorized)
				return
			}
			userID, ok := session.Values["user_id"].(int64)
			if !ok || userID == 0 {
				http.Error(w, `{"error": "authentication required"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id set by Auth.
// Returns zero if the request was not authenticated.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userKey).(int64); ok {
		return id
	}
	return 0
}
