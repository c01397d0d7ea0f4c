// Package main runs the interactive CloudStorage terminal client.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Yahmice/CloudStorage/internal/client/files"
	"github.com/Yahmice/CloudStorage/internal/client/session"
	"github.com/Yahmice/CloudStorage/internal/client/share"
	"github.com/Yahmice/CloudStorage/internal/client/transport"
	"github.com/Yahmice/CloudStorage/internal/client/users"
	"github.com/Yahmice/CloudStorage/internal/config"
	"github.com/Yahmice/CloudStorage/internal/dashboard"
)

var (
	version   string
	buildDate string
)

// shell holds the live client state: the API clients plus the currently
// mounted controllers. A navigation (login, open, home) closes the old
// controller and mounts a fresh one, so stale completions never render.
type shell struct {
	view    *termView
	oracle  *session.Oracle
	files   *files.Client
	share   *share.Service
	users   *users.Client
	board   *dashboard.Controller
	roster  *dashboard.Roster
	route   dashboard.Route
	downDir string
}

// mount replaces the dashboard controller for the given route and boots
// it, the way a route change remounts the page.
func (sh *shell) mount(ctx context.Context, route dashboard.Route) {
	if sh.board != nil {
		sh.board.Close()
	}
	sh.route = route
	sh.board = dashboard.New(sh.oracle, sh.files, sh.share, sh.view)
	sh.board.Boot(ctx, route)
}

func (sh *shell) mountRoster(ctx context.Context) {
	if sh.roster != nil {
		sh.roster.Close()
	}
	sh.roster = dashboard.NewRoster(sh.oracle, sh.users, rosterView{sh.view})
	sh.roster.Boot(ctx)
}

// rosterView adapts termView to the roster's view interface.
type rosterView struct{ *termView }

func (v rosterView) Render(s dashboard.RosterSnapshot) { v.RenderRoster(s) }

// repl runs the interactive loop, accepting commands against the
// mounted controllers.
func repl(sh *shell) {
	ctx := context.Background()
	fmt.Println("CloudStorage client. Введите 'help' для списка команд.")

	for {
		fmt.Print("cloud> ")
		if !sh.view.in.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(sh.view.in.Text()))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			printHelp()
		case "register":
			username := sh.view.prompt("логин")
			email := sh.view.prompt("email")
			password := sh.view.prompt("пароль")
			confirm := sh.view.prompt("пароль ещё раз")
			if err := sh.oracle.Register(ctx, username, email, password, confirm); err != nil {
				fmt.Println("!", dashboard.Message(err))
				continue
			}
			fmt.Println("+ аккаунт создан, выполните 'login'")
		case "login":
			username := sh.view.prompt("логин")
			password := sh.view.prompt("пароль")
			if err := sh.oracle.Login(ctx, username, password); err != nil {
				fmt.Println("!", dashboard.Message(err))
				continue
			}
			sh.mount(ctx, dashboard.Route{})
			sh.view.printFiles(sh.board.Snapshot())
		case "logout":
			if err := sh.oracle.Logout(ctx); err != nil {
				fmt.Println("!", dashboard.Message(err))
				continue
			}
			if sh.board != nil {
				sh.board.Close()
				sh.board = nil
			}
			fmt.Println("+ выход выполнен")
		case "list":
			if sh.board == nil {
				sh.mount(ctx, dashboard.Route{})
			} else {
				sh.board.Refresh(ctx)
			}
			sh.view.printFiles(sh.board.Snapshot())
		case "open":
			if len(args) < 2 {
				fmt.Println("Использование: open <user_id> [username]")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("! некорректный user_id")
				continue
			}
			route := dashboard.Route{SubjectID: id}
			if len(args) > 2 {
				route.SubjectName = args[2]
			}
			sh.mount(ctx, route)
			sh.view.printFiles(sh.board.Snapshot())
		case "home":
			sh.mount(ctx, dashboard.Route{})
			sh.view.printFiles(sh.board.Snapshot())
		case "upload":
			if len(args) < 2 {
				fmt.Println("Использование: upload <путь> [комментарий]")
				continue
			}
			if sh.board == nil {
				sh.mount(ctx, dashboard.Route{})
			}
			sh.upload(ctx, args[1], strings.Join(args[2:], " "))
		case "rename":
			if len(args) < 3 || sh.board == nil {
				fmt.Println("Использование: rename <id> <новое имя>")
				continue
			}
			sh.board.Rename(ctx, args[1], strings.Join(args[2:], " "))
		case "delete":
			if len(args) < 2 || sh.board == nil {
				fmt.Println("Использование: delete <id>")
				continue
			}
			sh.board.Delete(ctx, args[1])
		case "download":
			if len(args) < 2 || sh.board == nil {
				fmt.Println("Использование: download <id> [каталог]")
				continue
			}
			dir := sh.downDir
			if len(args) > 2 {
				dir = args[2]
			}
			sh.board.Download(ctx, args[1], dir)
		case "share":
			if len(args) < 2 || sh.board == nil {
				fmt.Println("Использование: share <id>")
				continue
			}
			sh.board.ShareLink(ctx, args[1])
		case "users":
			sh.mountRoster(ctx)
			sh.view.printUsers(sh.roster.Snapshot())
		case "rmuser":
			if id, ok := parseID(args, "rmuser <id>"); ok && sh.roster != nil {
				sh.roster.DeleteUser(ctx, id)
			}
		case "toggle":
			if id, ok := parseID(args, "toggle <id>"); ok && sh.roster != nil {
				sh.roster.ToggleAdmin(ctx, id)
			}
		case "files":
			if len(args) < 2 || sh.roster == nil {
				fmt.Println("Использование: files <user_id> [username]")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("! некорректный user_id")
				continue
			}
			name := ""
			if len(args) > 2 {
				name = args[2]
			}
			sh.roster.ViewUserFiles(id, name)
		case "exit", "quit":
			fmt.Println("До встречи")
			return
		default:
			fmt.Println("Неизвестная команда. Введите 'help'.")
		}
	}
}

func (sh *shell) upload(ctx context.Context, path, comment string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Println("! не удалось открыть файл:", err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		fmt.Println("! не удалось прочитать файл:", err)
		return
	}
	sh.board.Upload(ctx, info.Name(), f, info.Size(), comment)
}

func parseID(args []string, usage string) (int64, bool) {
	if len(args) < 2 {
		fmt.Println("Использование:", usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Println("! некорректный id")
		return 0, false
	}
	return id, true
}

func printHelp() {
	fmt.Println(`Команды:
  register                регистрация нового аккаунта
  login / logout          вход и выход
  list                    список файлов (обновляет с сервера)
  upload <путь> [коммент] загрузка файла
  rename <id> <имя>       переименование
  delete <id>             удаление (с подтверждением)
  download <id> [каталог] скачивание
  share <id>              публичная ссылка (копируется в буфер)
  open <user_id> [имя]    файлы пользователя (для администратора)
  home                    вернуться к своим файлам
  users                   список пользователей (админ)
  rmuser <id>             удалить пользователя (админ)
  toggle <id>             выдать/отозвать права администратора
  files <user_id> [имя]   открыть файлы пользователя из списка
  exit                    выход`)
}

// main parses flags, builds the API clients and starts the shell.
func main() {
	var (
		baseURL string
		showVer bool
	)
	flag.StringVar(&baseURL, "url", "", "server base URL (overrides SERVER_URL)")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("CloudStorage Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatal(err)
	}
	if baseURL != "" {
		cfg.ServerURL = baseURL
	}

	api, err := transport.New(cfg.ServerURL, cfg.CSRFCookie)
	if err != nil {
		log.Fatal(err)
	}

	view := &termView{in: bufio.NewScanner(os.Stdin), out: os.Stdout}
	sh := &shell{
		view:    view,
		oracle:  session.New(api),
		files:   files.New(api, cfg.MaxUploadSize),
		share:   share.New(api, share.SystemClipboard{}, share.WriterClipboard{Out: os.Stdout}),
		users:   users.New(api),
		downDir: ".",
	}
	view.onOpen = func(route dashboard.Route) {
		sh.mount(context.Background(), route)
		view.printFiles(sh.board.Snapshot())
	}

	repl(sh)
}
