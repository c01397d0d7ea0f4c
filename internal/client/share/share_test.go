package share

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Yahmice/CloudStorage/internal/client/transport"
)

type memClipboard struct {
	text string
	err  error
}

func (c *memClipboard) Write(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func newService(t *testing.T, handler http.Handler, clip, fallback Clipboard) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api, err := transport.New(srv.URL, "csrftoken")
	if err != nil {
		t.Fatalf("transport.New failed: %v", err)
	}
	return New(api, clip, fallback)
}

func tokenHandler(token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"share_link": "` + token + `"}`))
	})
}

func TestCreateLink_ComposesURL(t *testing.T) {
	var gotPath string
	s := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		tokenHandler("abc-123").ServeHTTP(w, r)
	}), &memClipboard{}, &memClipboard{})

	link, err := s.CreateLink(context.Background(), "f1")
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if gotPath != "/api/files/f1/share/" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.HasSuffix(link, "/shared/abc-123") {
		t.Fatalf("expected composed link, got %q", link)
	}
	if strings.Contains(link, "/api/") {
		t.Fatalf("link must use the public origin, got %q", link)
	}
}

func TestCreateLink_EmptyToken(t *testing.T) {
	s := newService(t, tokenHandler(""), &memClipboard{}, &memClipboard{})

	if _, err := s.CreateLink(context.Background(), "f1"); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestCreateLink_RemoteFailure(t *testing.T) {
	s := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}), &memClipboard{}, &memClipboard{})

	if _, err := s.CreateLink(context.Background(), "f1"); !errors.Is(err, transport.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCopyLink_PrimaryClipboard(t *testing.T) {
	clip := &memClipboard{}
	fallback := &memClipboard{}
	s := newService(t, tokenHandler("tok"), clip, fallback)

	link, viaFallback, err := s.CopyLink(context.Background(), "f1")
	if err != nil {
		t.Fatalf("CopyLink failed: %v", err)
	}
	if viaFallback {
		t.Fatal("primary clipboard path expected")
	}
	if clip.text != link {
		t.Fatalf("clipboard got %q, want %q", clip.text, link)
	}
	if fallback.text != "" {
		t.Fatal("fallback must not run when the primary succeeds")
	}
}

func TestCopyLink_FallsBack(t *testing.T) {
	clip := &memClipboard{err: errors.New("no clipboard utility available")}
	fallback := &memClipboard{}
	s := newService(t, tokenHandler("tok"), clip, fallback)

	link, viaFallback, err := s.CopyLink(context.Background(), "f1")
	if err != nil {
		t.Fatalf("CopyLink failed: %v", err)
	}
	if !viaFallback {
		t.Fatal("expected the fallback path")
	}
	if fallback.text != link {
		t.Fatalf("fallback got %q, want %q", fallback.text, link)
	}
}

func TestWriterClipboard(t *testing.T) {
	var buf bytes.Buffer
	if err := (WriterClipboard{Out: &buf}).Write("https://x/shared/t"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "https://x/shared/t") {
		t.Fatalf("expected the link in output, got %q", buf.String())
	}
}
