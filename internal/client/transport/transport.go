// Package transport provides the credentialed HTTP client shared by all
// API calls: a session cookie jar, the anti-forgery token supplier and a
// uniform error taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// csrfHeader is the request header the anti-forgery token travels in,
// matching the cookie the backend sets on login.
const csrfHeader = "X-CSRFToken"

// Client issues credentialed requests against the storage backend. All
// cookies live in an in-memory jar for the lifetime of the process;
// nothing is ever persisted.
type Client struct {
	base       *url.URL
	http       *http.Client
	csrfCookie string
}

// New builds a Client for the given base URL. csrfCookie names the cookie
// the anti-forgery token is read from.
func New(rawURL, csrfCookie string) (*Client, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", rawURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		base:       base,
		http:       &http.Client{Jar: jar},
		csrfCookie: csrfCookie,
	}, nil
}

// Origin returns scheme://host of the backend, used to compose
// user-facing absolute URLs.
func (c *Client) Origin() string {
	return c.base.Scheme + "://" + c.base.Host
}

// CSRFToken reads the anti-forgery token from the cookie jar. It is
// re-read on every call because the server may rotate the cookie at any
// time; callers must not cache the value.
func (c *Client) CSRFToken() (string, bool) {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name != c.csrfCookie || ck.Value == "" {
			continue
		}
		if v, err := url.QueryUnescape(ck.Value); err == nil {
			return v, true
		}
		return ck.Value, true
	}
	return "", false
}

// Get issues a credentialed read request. Non-2xx responses are returned
// as-is; callers map them through Error.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

// Send issues a mutating request. The anti-forgery token is mandatory:
// when the cookie is absent the request is refused locally with
// ErrMissingToken instead of letting the server answer with an opaque 403.
func (c *Client) Send(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	token, ok := c.CSRFToken()
	if !ok {
		return nil, ErrMissingToken
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(csrfHeader, token)
	return c.do(req)
}

// SendJSON marshals payload and issues a mutating JSON request.
func (c *Client) SendJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, method, path, "application/json", bytes.NewReader(b))
}

// PostAuth issues an authentication request (login, register). These are
// not gated on the token because the cookie is only issued once the first
// auth round trip completes; the token is still attached when present.
func (c *Client) PostAuth(ctx context.Context, path string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token, ok := c.CSRFToken(); ok {
		req.Header.Set(csrfHeader, token)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

func (c *Client) resolve(path string) string {
	u := *c.base
	query := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i+1:]
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query
	return u.String()
}

// Error maps a non-2xx response to the client error taxonomy, extracting
// a human-readable message from the body when the server provided one.
// It returns nil for 2xx responses.
func Error(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		// Keep the sentinel reachable through errors.Is, but surface the
		// server's reason when the body carries one.
		if msg := bodyMessage(resp); msg != "" {
			return &RemoteError{StatusCode: resp.StatusCode, Message: msg}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrAuthRequired
		}
		return ErrForbidden
	}
	return &RemoteError{StatusCode: resp.StatusCode, Message: bodyMessage(resp)}
}

// bodyMessage pulls the first of the conventional message fields out of
// an error body. The body may already be partially consumed; failures
// fall back to the empty string and RemoteError supplies a generic text.
func bodyMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// DecodeJSON decodes a 2xx response body into v and closes the body. A
// non-2xx response is converted through Error first.
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := Error(resp); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Discard drains and closes the body of a response whose payload is not
// needed, converting non-2xx statuses through Error.
func Discard(resp *http.Response) error {
	defer resp.Body.Close()
	if err := Error(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
