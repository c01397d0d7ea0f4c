package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Yahmice/CloudStorage/internal/dashboard"
)

// termView is the terminal presentation collaborator of the dashboard
// and roster controllers. It prints banners as they appear; the tables
// are printed on demand by the shell commands.
type termView struct {
	in     *bufio.Scanner
	out    io.Writer
	onOpen func(dashboard.Route)
}

func (v *termView) Render(s dashboard.Snapshot) {
	v.banners(s.Error, s.Success)
}

func (v *termView) RenderRoster(s dashboard.RosterSnapshot) {
	v.banners(s.Error, s.Success)
}

func (v *termView) banners(errMsg, success string) {
	if errMsg != "" {
		fmt.Fprintf(v.out, "! %s\n", errMsg)
	}
	if success != "" {
		fmt.Fprintf(v.out, "+ %s\n", success)
	}
}

func (v *termView) Confirm(prompt string) bool {
	fmt.Fprintf(v.out, "%s [y/N]: ", prompt)
	if !v.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(v.in.Text()))
	return answer == "y" || answer == "yes"
}

func (v *termView) RedirectToLogin() {
	fmt.Fprintln(v.out, "Сессия не активна. Выполните 'login'.")
}

func (v *termView) Denied(reason string) {
	fmt.Fprintf(v.out, "! %s\n", reason)
}

func (v *termView) OpenDashboard(route dashboard.Route) {
	if v.onOpen != nil {
		v.onOpen(route)
	}
}

// printFiles renders the file table of a dashboard snapshot.
func (v *termView) printFiles(s dashboard.Snapshot) {
	fmt.Fprintf(v.out, "Файловое хранилище: %s\n", s.Header())
	if len(s.Files) == 0 {
		fmt.Fprintln(v.out, "(файлов нет)")
		return
	}
	tw := tabwriter.NewWriter(v.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tИмя\tКомментарий\tРазмер\tЗагружен\tСкачан")
	for _, f := range s.Files {
		last := "никогда"
		if f.LastDownload != nil {
			last = f.LastDownload.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			f.ID, f.Name, f.Comment, f.Size,
			f.UploadDate.Format("2006-01-02 15:04"), last)
	}
	tw.Flush()
}

// printUsers renders the roster table.
func (v *termView) printUsers(s dashboard.RosterSnapshot) {
	if len(s.Users) == 0 {
		fmt.Fprintln(v.out, "Пользователи не найдены")
		return
	}
	tw := tabwriter.NewWriter(v.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tЛогин\tEmail\tАдмин\tФайлов\tХранилище")
	for _, u := range s.Users {
		admin := "нет"
		if u.IsAdmin {
			admin = "да"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			u.ID, u.Username, u.Email, admin, u.TotalFiles,
			dashboard.FormatStorage(u.TotalStorage))
	}
	tw.Flush()
}

// prompt reads one line of input with a label.
func (v *termView) prompt(label string) string {
	fmt.Fprintf(v.out, "%s: ", label)
	if !v.in.Scan() {
		return ""
	}
	return strings.TrimSpace(v.in.Text())
}
