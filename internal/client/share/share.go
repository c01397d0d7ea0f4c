// Package share requests public share tokens and places the composed
// link on the clipboard, falling back to printing it for manual copy
// when no clipboard capability is available.
package share

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/Yahmice/CloudStorage/internal/client/transport"
)

// Clipboard copies text into a paste buffer.
type Clipboard interface {
	Write(text string) error
}

// Service resolves share tokens into user-facing absolute URLs.
type Service struct {
	api      *transport.Client
	clip     Clipboard
	fallback Clipboard
}

// New returns a share service. clip is the primary clipboard; fallback is
// used when the primary is unavailable and must not fail.
func New(api *transport.Client, clip, fallback Clipboard) *Service {
	return &Service{api: api, clip: clip, fallback: fallback}
}

// CreateLink requests a share token for the file and composes the public
// URL as origin + "/shared/" + token. The link is not persisted anywhere
// on the client.
func (s *Service) CreateLink(ctx context.Context, fileID string) (string, error) {
	resp, err := s.api.Get(ctx, "/api/files/"+fileID+"/share/")
	if err != nil {
		return "", err
	}
	var payload struct {
		ShareLink string `json:"share_link"`
	}
	if err := transport.DecodeJSON(resp, &payload); err != nil {
		return "", err
	}
	if payload.ShareLink == "" {
		return "", &transport.RemoteError{StatusCode: 200, Message: "server returned an empty share token"}
	}
	return s.api.Origin() + "/shared/" + payload.ShareLink, nil
}

// CopyLink creates the share link and copies it to the clipboard. When
// the primary clipboard fails the fallback path is taken and the link is
// still considered delivered; viaFallback reports which path ran.
func (s *Service) CopyLink(ctx context.Context, fileID string) (link string, viaFallback bool, err error) {
	link, err = s.CreateLink(ctx, fileID)
	if err != nil {
		return "", false, err
	}
	if err := s.clip.Write(link); err != nil {
		if err := s.fallback.Write(link); err != nil {
			return "", true, err
		}
		return link, true, nil
	}
	return link, false, nil
}

// SystemClipboard shells out to the first clipboard utility found on the
// host. Headless and stripped-down environments typically have none, in
// which case Write fails and the caller takes the fallback path.
type SystemClipboard struct{}

var clipboardTools = [][]string{
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"pbcopy"},
	{"clip"},
}

func (SystemClipboard) Write(text string) error {
	for _, tool := range clipboardTools {
		if _, err := exec.LookPath(tool[0]); err != nil {
			continue
		}
		cmd := exec.Command(tool[0], tool[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", tool[0], err)
		}
		return nil
	}
	return fmt.Errorf("no clipboard utility available")
}

// WriterClipboard prints the text so the user can select and copy it by
// hand. It is the guaranteed fallback path.
type WriterClipboard struct {
	Out io.Writer
}

func (w WriterClipboard) Write(text string) error {
	_, err := fmt.Fprintf(w.Out, "copy the link manually:\n%s\n", text)
	return err
}
