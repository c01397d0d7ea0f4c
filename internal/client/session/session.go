// Package session resolves the current identity against the backend and
// drives the login, registration and logout flows. The backend is the
// single source of truth: nothing about the session is trusted locally or
// cached across route changes.
package session

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/Yahmice/CloudStorage/internal/client/transport"
	"github.com/Yahmice/CloudStorage/internal/models"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{3,19}$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	passwordUpperRe   = regexp.MustCompile(`[A-Z]`)
	passwordDigitRe   = regexp.MustCompile(`\d`)
	passwordSpecialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Oracle answers "who am I" by asking the backend profile endpoint.
type Oracle struct {
	api *transport.Client
}

// New returns an Oracle backed by the given transport.
func New(api *transport.Client) *Oracle {
	return &Oracle{api: api}
}

// Resolve queries the profile endpoint and returns the current session.
// Any failure, including a network one, resolves to an unauthenticated
// session: the caller is expected to redirect to the login entry point.
// Resolve must be re-invoked on every route change; session state can
// change out-of-band (logout in another client, server-side expiry).
func (o *Oracle) Resolve(ctx context.Context) (models.Session, error) {
	resp, err := o.api.Get(ctx, "/api/profile/")
	if err != nil {
		return models.Session{}, err
	}
	var profile models.Profile
	if err := transport.DecodeJSON(resp, &profile); err != nil {
		return models.Session{}, err
	}
	return models.Session{
		Authenticated: true,
		IsAdmin:       profile.IsAdmin,
		Username:      profile.Username,
		Email:         profile.Email,
	}, nil
}

// Login authenticates with a username and password. On success the
// backend sets the session and anti-forgery cookies in the jar.
func (o *Oracle) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return &transport.ValidationError{Reason: "username and password are required"}
	}
	resp, err := o.api.PostAuth(ctx, "/api/login/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	return transport.Discard(resp)
}

// Register creates a new account after validating the fields locally the
// same way the backend does, so obviously bad input never leaves the
// client.
func (o *Oracle) Register(ctx context.Context, username, email, password, passwordConfirm string) error {
	if err := validateRegistration(username, email, password, passwordConfirm); err != nil {
		return err
	}
	resp, err := o.api.PostAuth(ctx, "/api/register/", map[string]string{
		"username":         username,
		"email":            email,
		"password":         password,
		"password_confirm": passwordConfirm,
	})
	if err != nil {
		return err
	}
	return transport.Discard(resp)
}

// Logout ends the backend session. It is a mutating call and therefore
// requires the anti-forgery token.
func (o *Oracle) Logout(ctx context.Context) error {
	resp, err := o.api.SendJSON(ctx, http.MethodPost, "/api/logout/", struct{}{})
	if err != nil {
		return err
	}
	return transport.Discard(resp)
}

func validateRegistration(username, email, password, passwordConfirm string) error {
	if !usernameRe.MatchString(username) {
		return &transport.ValidationError{
			Reason: "username must be 4-20 characters, start with a letter and contain only latin letters and digits",
		}
	}
	if !emailRe.MatchString(email) {
		return &transport.ValidationError{Reason: "invalid email address"}
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if password != passwordConfirm {
		return &transport.ValidationError{Reason: "passwords do not match"}
	}
	return nil
}

func validatePassword(password string) error {
	switch {
	case len(password) < 6:
		return &transport.ValidationError{Reason: "password must be at least 6 characters"}
	case !passwordUpperRe.MatchString(password):
		return &transport.ValidationError{Reason: "password must contain an uppercase letter"}
	case !passwordDigitRe.MatchString(password):
		return &transport.ValidationError{Reason: "password must contain a digit"}
	case !passwordSpecialRe.MatchString(password):
		return &transport.ValidationError{Reason: "password must contain a special character"}
	}
	return nil
}

// IsAuthRequired reports whether err means the session is gone and the
// user has to sign in again.
func IsAuthRequired(err error) bool {
	return errors.Is(err, transport.ErrAuthRequired)
}
