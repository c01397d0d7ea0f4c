// Package dashboard orchestrates the file-dashboard and admin roster
// views: it gates rendering on session validity, derives the effective
// view subject, drives the CRUD operations and keeps the transient UI
// state (busy flag, error and success banners). Presentation is an
// external collaborator behind the View interface; the controller only
// exposes state.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Yahmice/CloudStorage/internal/client/transport"
	"github.com/Yahmice/CloudStorage/internal/models"
)

// State enumerates the top-level controller states.
type State int

const (
	// Booting means the session has not been resolved yet.
	Booting State = iota
	// Unauthorized means session resolution failed; the mount is over
	// and the view has been redirected to login.
	Unauthorized
	// Ready means the dashboard is rendered; loading/error/success are
	// sub-states carried by Snapshot flags.
	Ready
)

// SessionOracle resolves the current identity against the backend.
type SessionOracle interface {
	Resolve(ctx context.Context) (models.Session, error)
}

// FileStore is the typed CRUD surface of the remote file collection.
type FileStore interface {
	List(ctx context.Context, subjectID int64) ([]models.FileRecord, error)
	Upload(ctx context.Context, name string, content io.Reader, size int64, comment string) error
	Rename(ctx context.Context, id, newName string) error
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id, dir string) (string, error)
}

// ShareLinker creates a share link and delivers it to the user.
type ShareLinker interface {
	CopyLink(ctx context.Context, fileID string) (link string, viaFallback bool, err error)
}

// View is the presentation collaborator. It renders whatever state the
// controller exposes and owns the user-facing dialogs.
type View interface {
	// Render is called after every state change with a fresh snapshot.
	Render(s Snapshot)
	// Confirm asks the user to confirm a destructive action.
	Confirm(prompt string) bool
	// RedirectToLogin navigates away to the login entry point.
	RedirectToLogin()
}

// Route carries the navigation state the dashboard was opened with.
type Route struct {
	// SubjectID is the admin-selected user id from the query string,
	// zero when absent.
	SubjectID int64
	// SubjectName is the display hint carried with the navigation.
	SubjectName string
}

// Snapshot is the immutable render state handed to the view.
type Snapshot struct {
	State   State
	Session models.Session
	Subject models.ViewSubject
	Files   []models.FileRecord
	// Busy is true while a request is outstanding; the view disables
	// the triggering controls.
	Busy bool
	// Error and Success are the dismissible banners; at most one is
	// set after a completed action.
	Error   string
	Success string
}

// Header returns the view title: the subject's name, marked when an
// admin is looking at somebody else's storage.
func (s Snapshot) Header() string {
	if !s.Subject.Self() {
		name := s.Subject.Username
		if name == "" {
			name = fmt.Sprintf("#%d", s.Subject.UserID)
		}
		return fmt.Sprintf("%s (просмотр администратором)", name)
	}
	return s.Session.Username
}

// CanUpload reports whether the upload affordance is shown. Uploads
// always target the caller's own storage, so it is hidden whenever the
// subject is somebody else.
func (s Snapshot) CanUpload() bool {
	return s.State == Ready && s.Subject.Self()
}

// Controller drives the file dashboard for a single mount. It is not
// reusable after Close.
type Controller struct {
	sessions SessionOracle
	files    FileStore
	share    ShareLinker
	view     View

	mu     sync.Mutex
	snap   Snapshot
	closed bool
}

// New wires a dashboard controller to its collaborators.
func New(sessions SessionOracle, files FileStore, share ShareLinker, view View) *Controller {
	return &Controller{
		sessions: sessions,
		files:    files,
		share:    share,
		view:     view,
		snap:     Snapshot{State: Booting},
	}
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Close tears the controller down. In-flight completions become no-ops:
// nothing renders against an unmounted view.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Boot resolves the session and performs the initial fetch. A failed
// resolution is terminal for this mount: the state becomes Unauthorized
// and the view is redirected to login without any file request.
func (c *Controller) Boot(ctx context.Context, route Route) {
	sess, err := c.sessions.Resolve(ctx)
	if err != nil || !sess.Authenticated {
		c.update(func(s *Snapshot) {
			s.State = Unauthorized
		})
		c.redirect()
		return
	}

	subject := models.ViewSubject{}
	if sess.IsAdmin && route.SubjectID != 0 {
		// Only admins may act on behalf of another user; for everyone
		// else the override in the route is ignored.
		subject = models.ViewSubject{UserID: route.SubjectID, Username: route.SubjectName}
	}

	c.update(func(s *Snapshot) {
		s.State = Ready
		s.Session = sess
		s.Subject = subject
		s.Busy = true
	})
	records, err := c.files.List(ctx, subject.UserID)
	c.complete(records, err, "")
}

// Refresh re-fetches the file collection, replacing the rendered set
// wholesale with the server's truth.
func (c *Controller) Refresh(ctx context.Context) {
	if !c.begin() {
		return
	}
	records, err := c.files.List(ctx, c.subjectID())
	c.complete(records, err, "")
}

// Upload stores a new file in the caller's own storage and re-fetches
// the collection on success.
func (c *Controller) Upload(ctx context.Context, name string, content io.Reader, size int64, comment string) {
	if !c.Snapshot().CanUpload() {
		return
	}
	if !c.begin() {
		return
	}
	if err := c.files.Upload(ctx, name, content, size, comment); err != nil {
		c.fail(err)
		return
	}
	records, err := c.files.List(ctx, c.subjectID())
	c.complete(records, err, "файл успешно загружен")
}

// Rename changes a record's display name and re-fetches on success.
func (c *Controller) Rename(ctx context.Context, id, newName string) {
	if !c.begin() {
		return
	}
	if err := c.files.Rename(ctx, id, newName); err != nil {
		c.fail(err)
		return
	}
	records, err := c.files.List(ctx, c.subjectID())
	c.complete(records, err, "файл переименован")
}

// Delete removes a record after an explicit confirmation. When the user
// cancels, no request is issued and the list stays as it was. The dialog
// only appears when the action can actually run, so a confirmed delete
// is never dropped silently.
func (c *Controller) Delete(ctx context.Context, id string) {
	if !c.ready() {
		return
	}
	if !c.view.Confirm("Вы уверены, что хотите удалить этот файл?") {
		return
	}
	if !c.begin() {
		return
	}
	if err := c.files.Delete(ctx, id); err != nil {
		c.fail(err)
		return
	}
	records, err := c.files.List(ctx, c.subjectID())
	c.complete(records, err, "файл удалён")
}

// Download materialises the file under dir and re-fetches the list so
// the last-download column reflects the server.
func (c *Controller) Download(ctx context.Context, id, dir string) {
	if !c.begin() {
		return
	}
	path, err := c.files.Download(ctx, id, dir)
	if err != nil {
		c.fail(err)
		return
	}
	records, err := c.files.List(ctx, c.subjectID())
	c.complete(records, err, "файл сохранён: "+path)
}

// ShareLink creates a share link for the record and puts it on the
// clipboard, reporting which copy path ran.
func (c *Controller) ShareLink(ctx context.Context, id string) {
	if !c.begin() {
		return
	}
	_, viaFallback, err := c.share.CopyLink(ctx, id)
	if err != nil {
		c.fail(err)
		return
	}
	msg := "ссылка скопирована в буфер обмена"
	if viaFallback {
		msg = "ссылка готова, скопируйте её вручную"
	}
	c.update(func(s *Snapshot) {
		s.Busy = false
		s.Success = msg
	})
}

// ready reports whether a new action could start right now.
func (c *Controller) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.snap.State == Ready && !c.snap.Busy
}

// begin marks an action as started: banners are cleared and the busy
// flag is raised. It refuses to start while another action is
// outstanding or after Close.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.snap.State != Ready || c.snap.Busy {
		return false
	}
	c.snap.Busy = true
	c.snap.Error = ""
	c.snap.Success = ""
	c.render(c.snap)
	return true
}

// complete finishes an action: the rendered set is replaced with the
// fresh server list and exactly one banner is set.
func (c *Controller) complete(records []models.FileRecord, err error, success string) {
	if err != nil {
		c.fail(err)
		return
	}
	c.update(func(s *Snapshot) {
		s.Busy = false
		s.Files = records
		s.Success = success
	})
}

// fail converts any failure into a user-facing banner. The view stays in
// Ready; there is no automatic retry anywhere in this controller.
func (c *Controller) fail(err error) {
	c.update(func(s *Snapshot) {
		s.Busy = false
		s.Error = Message(err)
	})
}

func (c *Controller) subjectID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Subject.UserID
}

// update applies a mutation and renders, unless the controller has been
// closed in the meantime.
func (c *Controller) update(fn func(*Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	fn(&c.snap)
	c.render(c.snap)
}

func (c *Controller) render(s Snapshot) {
	if c.view != nil {
		c.view.Render(s)
	}
}

func (c *Controller) redirect() {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if !closed && c.view != nil {
		c.view.RedirectToLogin()
	}
}

// Message renders an error from any layer as banner text.
func Message(err error) string {
	var validation *transport.ValidationError
	if errors.As(err, &validation) {
		return validation.Reason
	}
	var remote *transport.RemoteError
	if errors.As(err, &remote) {
		return remote.Error()
	}
	var netErr *transport.TransportError
	if errors.As(err, &netErr) {
		return "сервер недоступен, проверьте соединение"
	}
	switch {
	case errors.Is(err, transport.ErrMissingToken):
		return "отсутствует CSRF токен, войдите в систему заново"
	case errors.Is(err, transport.ErrAuthRequired):
		return "требуется вход в систему"
	case errors.Is(err, transport.ErrForbidden):
		return "доступ запрещён"
	}
	return err.Error()
}
