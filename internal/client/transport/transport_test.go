package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "csrftoken")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, srv
}

func setToken(t *testing.T, c *Client, value string) {
	t.Helper()
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: "csrftoken", Value: value}})
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New("not-a-url", "csrftoken"); err == nil {
		t.Fatal("expected error for relative URL")
	}
}

func TestCSRFToken_ReadPerCall(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	if _, ok := c.CSRFToken(); ok {
		t.Fatal("expected no token before any cookie is set")
	}

	setToken(t, c, "first")
	token, ok := c.CSRFToken()
	if !ok || token != "first" {
		t.Fatalf("expected token %q, got %q (ok=%v)", "first", token, ok)
	}

	// The server may rotate the cookie; the supplier must observe it.
	setToken(t, c, "second")
	token, _ = c.CSRFToken()
	if token != "second" {
		t.Fatalf("expected rotated token %q, got %q", "second", token)
	}
}

func TestCSRFToken_DecodesValue(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	setToken(t, c, url.QueryEscape("a=b"))
	token, ok := c.CSRFToken()
	if !ok || token != "a=b" {
		t.Fatalf("expected decoded token, got %q", token)
	}
}

func TestSend_MissingTokenShortCircuits(t *testing.T) {
	requests := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	_, err := c.Send(context.Background(), http.MethodDelete, "/api/files/1/", "", nil)
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if requests != 0 {
		t.Fatalf("expected no request to be issued, got %d", requests)
	}
}

func TestSend_AttachesTokenHeader(t *testing.T) {
	var gotHeader string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-CSRFToken")
	}))
	setToken(t, c, "tok123")

	resp, err := c.Send(context.Background(), http.MethodPost, "/api/logout/", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	resp.Body.Close()
	if gotHeader != "tok123" {
		t.Fatalf("expected token header %q, got %q", "tok123", gotHeader)
	}
}

func TestGet_PreservesQuery(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
	}))

	resp, err := c.Get(context.Background(), "/api/files/?user_id=7")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()
	if gotPath != "/api/files/" {
		t.Fatalf("expected path %q, got %q", "/api/files/", gotPath)
	}
	if gotQuery != "user_id=7" {
		t.Fatalf("expected query %q, got %q", "user_id=7", gotQuery)
	}
}

func TestError_Taxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "2xx is nil",
			status: http.StatusOK,
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
			},
		},
		{
			name:   "401 maps to ErrAuthRequired",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrAuthRequired) {
					t.Fatalf("expected ErrAuthRequired, got %v", err)
				}
			},
		},
		{
			name:   "403 maps to ErrForbidden",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
			},
		},
		{
			name:   "401 with body keeps the sentinel and the reason",
			status: http.StatusUnauthorized,
			body:   `{"error": "invalid username or password"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrAuthRequired) {
					t.Fatalf("expected ErrAuthRequired match, got %v", err)
				}
				if err.Error() != "invalid username or password" {
					t.Fatalf("expected the server reason, got %q", err.Error())
				}
			},
		},
		{
			name:   "403 with body keeps the sentinel and the reason",
			status: http.StatusForbidden,
			body:   `{"error": "access denied"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrForbidden) {
					t.Fatalf("expected ErrForbidden match, got %v", err)
				}
				if err.Error() != "access denied" {
					t.Fatalf("expected the server reason, got %q", err.Error())
				}
			},
		},
		{
			name:   "body message is extracted",
			status: http.StatusBadRequest,
			body:   `{"error": "file too large"}`,
			check: func(t *testing.T, err error) {
				var remote *RemoteError
				if !errors.As(err, &remote) {
					t.Fatalf("expected RemoteError, got %v", err)
				}
				if remote.Message != "file too large" {
					t.Fatalf("expected extracted message, got %q", remote.Message)
				}
			},
		},
		{
			name:   "generic fallback without body",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var remote *RemoteError
				if !errors.As(err, &remote) {
					t.Fatalf("expected RemoteError, got %v", err)
				}
				if !strings.Contains(remote.Error(), "500") {
					t.Fatalf("expected generic status message, got %q", remote.Error())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			}))
			resp, err := c.Get(context.Background(), "/x")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			defer resp.Body.Close()
			tt.check(t, Error(resp))
		})
	}
}

func TestGet_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := New(srv.URL, "csrftoken")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	srv.Close()

	_, err = c.Get(context.Background(), "/api/files/")
	var netErr *TransportError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestOrigin(t *testing.T) {
	c, err := New("https://cloud.example.com/base", "csrftoken")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := c.Origin(); got != "https://cloud.example.com" {
		t.Fatalf("expected origin without path, got %q", got)
	}
}
