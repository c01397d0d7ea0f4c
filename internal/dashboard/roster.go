package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/Yahmice/CloudStorage/internal/models"
)

// UserStore is the admin roster surface consumed by the controller.
type UserStore interface {
	List(ctx context.Context) ([]models.UserRecord, error)
	Delete(ctx context.Context, id int64) error
	ToggleAdmin(ctx context.Context, id int64) (bool, error)
}

// RosterView is the presentation collaborator of the user-management
// screen.
type RosterView interface {
	Render(s RosterSnapshot)
	Confirm(prompt string) bool
	// Denied shows the denial reason briefly and then navigates away.
	Denied(reason string)
	// OpenDashboard navigates into the dashboard scoped to a user.
	OpenDashboard(route Route)
}

// RosterSnapshot is the render state of the admin roster.
type RosterSnapshot struct {
	State   State
	Session models.Session
	Users   []models.UserRecord
	Busy    bool
	Error   string
	Success string
}

// Roster drives the admin-only user management view. Access is gated the
// same way as the dashboard plus an explicit admin check.
type Roster struct {
	sessions SessionOracle
	users    UserStore
	view     RosterView

	mu     sync.Mutex
	snap   RosterSnapshot
	closed bool
}

// NewRoster wires a roster controller to its collaborators.
func NewRoster(sessions SessionOracle, users UserStore, view RosterView) *Roster {
	return &Roster{
		sessions: sessions,
		users:    users,
		view:     view,
		snap:     RosterSnapshot{State: Booting},
	}
}

// Snapshot returns the current render state.
func (r *Roster) Snapshot() RosterSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Close tears the controller down; late completions become no-ops.
func (r *Roster) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// Boot resolves the session, verifies the admin role and fetches the
// roster. Non-admins see the denial reason and are navigated away; no
// user list request is issued for them.
func (r *Roster) Boot(ctx context.Context) {
	sess, err := r.sessions.Resolve(ctx)
	if err != nil || !sess.Authenticated {
		r.update(func(s *RosterSnapshot) { s.State = Unauthorized })
		r.deny("требуется вход в систему")
		return
	}
	if !sess.IsAdmin {
		r.update(func(s *RosterSnapshot) { s.State = Unauthorized })
		r.deny("доступ запрещён, требуются права администратора")
		return
	}

	r.update(func(s *RosterSnapshot) {
		s.State = Ready
		s.Session = sess
		s.Busy = true
	})
	users, err := r.users.List(ctx)
	r.complete(users, err, "")
}

// Refresh re-fetches the roster.
func (r *Roster) Refresh(ctx context.Context) {
	if !r.begin() {
		return
	}
	users, err := r.users.List(ctx)
	r.complete(users, err, "")
}

// DeleteUser removes an account after explicit confirmation. The dialog
// only appears when the action can actually run.
func (r *Roster) DeleteUser(ctx context.Context, id int64) {
	if !r.ready() {
		return
	}
	if !r.view.Confirm("Вы уверены, что хотите удалить этого пользователя?") {
		return
	}
	if !r.begin() {
		return
	}
	if err := r.users.Delete(ctx, id); err != nil {
		r.fail(err)
		return
	}
	users, err := r.users.List(ctx)
	r.complete(users, err, "пользователь удалён")
}

// ToggleAdmin flips the admin flag of an account and reports the new
// state in the success banner.
func (r *Roster) ToggleAdmin(ctx context.Context, id int64) {
	if !r.begin() {
		return
	}
	isAdmin, err := r.users.ToggleAdmin(ctx, id)
	if err != nil {
		r.fail(err)
		return
	}
	msg := "права администратора удалены"
	if isAdmin {
		msg = "права администратора назначены"
	}
	users, err := r.users.List(ctx)
	r.complete(users, err, msg)
}

// ViewUserFiles navigates into the dashboard showing the given user's
// files. The username is a display hint only.
func (r *Roster) ViewUserFiles(id int64, username string) {
	r.mu.Lock()
	ok := !r.closed && r.snap.State == Ready
	r.mu.Unlock()
	if !ok {
		return
	}
	r.view.OpenDashboard(Route{SubjectID: id, SubjectName: username})
}

func (r *Roster) ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && r.snap.State == Ready && !r.snap.Busy
}

func (r *Roster) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.snap.State != Ready || r.snap.Busy {
		return false
	}
	r.snap.Busy = true
	r.snap.Error = ""
	r.snap.Success = ""
	r.render(r.snap)
	return true
}

func (r *Roster) complete(users []models.UserRecord, err error, success string) {
	if err != nil {
		r.fail(err)
		return
	}
	r.update(func(s *RosterSnapshot) {
		s.Busy = false
		s.Users = users
		s.Success = success
	})
}

func (r *Roster) fail(err error) {
	r.update(func(s *RosterSnapshot) {
		s.Busy = false
		s.Error = Message(err)
	})
}

func (r *Roster) update(fn func(*RosterSnapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	fn(&r.snap)
	r.render(r.snap)
}

func (r *Roster) render(s RosterSnapshot) {
	if r.view != nil {
		r.view.Render(s)
	}
}

func (r *Roster) deny(reason string) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if !closed && r.view != nil {
		r.view.Denied(reason)
	}
}

// FormatStorage renders a byte count the way the roster table shows it.
func FormatStorage(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", value, units[i])
}
