package dashboard

import (
	"context"
	"testing"

	"github.com/Yahmice/CloudStorage/internal/client/transport"
	"github.com/Yahmice/CloudStorage/internal/models"
)

type fakeUserStore struct {
	users []models.UserRecord

	listCalls int
	listErr   error

	deletes   []int64
	deleteErr error

	toggled   []int64
	adminNow  bool
	toggleErr error
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.UserRecord, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id int64) error {
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

func (f *fakeUserStore) ToggleAdmin(ctx context.Context, id int64) (bool, error) {
	f.toggled = append(f.toggled, id)
	return f.adminNow, f.toggleErr
}

type fakeRosterView struct {
	renders  []RosterSnapshot
	confirm  bool
	confirms int
	denials  []string
	opened   []Route
}

func (f *fakeRosterView) Render(s RosterSnapshot) { f.renders = append(f.renders, s) }
func (f *fakeRosterView) Confirm(string) bool {
	f.confirms++
	return f.confirm
}
func (f *fakeRosterView) Denied(reason string)    { f.denials = append(f.denials, reason) }
func (f *fakeRosterView) OpenDashboard(r Route)   { f.opened = append(f.opened, r) }

func bootRoster(t *testing.T, sess models.Session, store *fakeUserStore) (*Roster, *fakeRosterView) {
	t.Helper()
	view := &fakeRosterView{confirm: true}
	r := NewRoster(&fakeOracle{session: sess}, store, view)
	r.Boot(context.Background())
	return r, view
}

func TestRosterBoot_UnauthenticatedDenied(t *testing.T) {
	store := &fakeUserStore{}
	view := &fakeRosterView{}
	r := NewRoster(&fakeOracle{err: transport.ErrAuthRequired}, store, view)

	r.Boot(context.Background())

	if r.Snapshot().State != Unauthorized {
		t.Fatal("expected Unauthorized state")
	}
	if len(view.denials) != 1 || view.denials[0] != "требуется вход в систему" {
		t.Fatalf("unexpected denials %v", view.denials)
	}
	if store.listCalls != 0 {
		t.Fatal("no roster request must be issued for a dead session")
	}
}

func TestRosterBoot_NonAdminDenied(t *testing.T) {
	store := &fakeUserStore{}
	r, view := bootRoster(t, member(), store)

	if r.Snapshot().State != Unauthorized {
		t.Fatal("expected Unauthorized state")
	}
	if len(view.denials) != 1 || view.denials[0] != "доступ запрещён, требуются права администратора" {
		t.Fatalf("unexpected denials %v", view.denials)
	}
	if store.listCalls != 0 {
		t.Fatal("non-admins must not trigger a roster fetch")
	}
}

func TestRosterBoot_AdminSeesUsers(t *testing.T) {
	store := &fakeUserStore{users: []models.UserRecord{{ID: 1, Username: "alice"}}}
	r, _ := bootRoster(t, admin(), store)

	snap := r.Snapshot()
	if snap.State != Ready || snap.Busy {
		t.Fatalf("expected settled Ready state, got %+v", snap)
	}
	if len(snap.Users) != 1 || snap.Users[0].Username != "alice" {
		t.Fatalf("unexpected users %+v", snap.Users)
	}
}

func TestRosterDelete_ConfirmGated(t *testing.T) {
	store := &fakeUserStore{}
	view := &fakeRosterView{confirm: false}
	r := NewRoster(&fakeOracle{session: admin()}, store, view)
	r.Boot(context.Background())

	r.DeleteUser(context.Background(), 5)

	if len(store.deletes) != 0 {
		t.Fatal("cancelled delete must not reach the store")
	}

	view.confirm = true
	r.DeleteUser(context.Background(), 5)

	if len(store.deletes) != 1 || store.deletes[0] != 5 {
		t.Fatalf("expected delete of user 5, got %v", store.deletes)
	}
	if r.Snapshot().Success != "пользователь удалён" {
		t.Fatalf("unexpected banner %q", r.Snapshot().Success)
	}
}

func TestRosterDelete_NoPromptWhenUnavailable(t *testing.T) {
	store := &fakeUserStore{}
	r, view := bootRoster(t, member(), store)

	r.DeleteUser(context.Background(), 5)

	if view.confirms != 0 {
		t.Fatal("no confirmation dialog for a denied roster")
	}

	r2, view2 := bootRoster(t, admin(), store)
	r2.Close()
	r2.DeleteUser(context.Background(), 5)

	if view2.confirms != 0 {
		t.Fatal("no confirmation dialog after Close")
	}
	if len(store.deletes) != 0 {
		t.Fatal("no request must be issued either way")
	}
}

func TestRosterToggleAdmin_Banners(t *testing.T) {
	tests := []struct {
		name     string
		adminNow bool
		want     string
	}{
		{"granted", true, "права администратора назначены"},
		{"revoked", false, "права администратора удалены"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{adminNow: tt.adminNow}
			r, _ := bootRoster(t, admin(), store)

			r.ToggleAdmin(context.Background(), 3)

			if got := r.Snapshot().Success; got != tt.want {
				t.Fatalf("expected banner %q, got %q", tt.want, got)
			}
			if len(store.toggled) != 1 || store.toggled[0] != 3 {
				t.Fatalf("unexpected toggles %v", store.toggled)
			}
		})
	}
}

func TestRosterRefresh_FailureBanner(t *testing.T) {
	store := &fakeUserStore{}
	r, _ := bootRoster(t, admin(), store)
	store.listErr = transport.ErrForbidden

	r.Refresh(context.Background())

	snap := r.Snapshot()
	if snap.State != Ready {
		t.Fatal("failure must keep the roster rendered")
	}
	if snap.Error != "доступ запрещён" {
		t.Fatalf("unexpected banner %q", snap.Error)
	}
}

func TestRosterViewUserFiles_Navigates(t *testing.T) {
	r, view := bootRoster(t, admin(), &fakeUserStore{})

	r.ViewUserFiles(7, "bob")

	if len(view.opened) != 1 {
		t.Fatalf("expected one navigation, got %d", len(view.opened))
	}
	if view.opened[0] != (Route{SubjectID: 7, SubjectName: "bob"}) {
		t.Fatalf("unexpected route %+v", view.opened[0])
	}
}

func TestRosterClose_NoLateRenders(t *testing.T) {
	store := &fakeUserStore{}
	r, view := bootRoster(t, admin(), store)
	rendersBefore := len(view.renders)

	r.Close()
	r.Refresh(context.Background())
	r.ViewUserFiles(1, "x")

	if len(view.renders) != rendersBefore {
		t.Fatal("nothing must render after Close")
	}
	if len(view.opened) != 0 {
		t.Fatal("no navigation after Close")
	}
}

func TestFormatStorage(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512.00 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatStorage(tt.bytes); got != tt.want {
			t.Errorf("FormatStorage(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
