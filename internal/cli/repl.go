package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Nikocoro/prubas123/internal/gallery"
)

const (
	guestHelp  = "Available commands: login, help, exit"
	memberHelp = "Available commands: list, search <text>, cat <category>, clear, policy any|all, page <n>, next, prev, logout, help, exit"
	adminHelp  = memberHelp + "\nAdmin commands: add, edit <id>, delete <id>, adduser, upload <file>"
)

var errLoginRequired = errors.New("log in first")

// runREPL reads commands line by line until EOF or exit.
func runREPL(ctx context.Context, a *App, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "gallery %s> ", a.status())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}

		if quit := a.exec(ctx, line); quit {
			return
		}
	}
}

// exec runs one command line and reports whether the loop should stop.
func (a *App) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	if cmd == "" {
		return false
	}

	if cmd != "help" && cmd != "login" && cmd != "exit" && cmd != "quit" && !a.isLoggedIn() {
		a.report(errLoginRequired)
		return false
	}

	var err error
	switch cmd {
	case "help":
		a.help()
	case "login":
		err = a.Login(ctx)
	case "logout":
		a.Logout()
	case "l", "list":
		err = a.Refresh(ctx)
	case "search":
		a.state.SetSearch(arg)
		a.show()
	case "cat":
		if arg == "" || arg == gallery.AllCategories {
			a.state.ClearCategories()
		} else {
			a.state.ToggleCategory(arg)
		}
		a.show()
	case "clear":
		a.state.SetSearch("")
		a.state.ClearCategories()
		a.show()
	case "policy":
		err = a.setPolicy(arg)
	case "page":
		err = a.goToPage(arg)
	case "next":
		if !a.state.NextPage() {
			a.println("Already on the last page.")
		}
		a.show()
	case "prev":
		if !a.state.PrevPage() {
			a.println("Already on the first page.")
		}
		a.show()
	case "add":
		err = a.AddProfile(ctx)
	case "edit":
		err = a.EditProfile(ctx, arg)
	case "delete":
		err = a.DeleteProfile(ctx, arg)
	case "adduser":
		err = a.AddUser(ctx)
	case "upload":
		err = a.UploadPhoto(ctx, arg)
	case "exit", "quit":
		a.println("Bye!")
		return true
	default:
		a.println("Unknown command:", cmd)
	}

	if err != nil {
		a.report(err)
	}
	return false
}

func (a *App) help() {
	switch {
	case !a.isLoggedIn():
		a.println(guestHelp)
	case a.api.Session().IsAdmin():
		a.println(adminHelp)
	default:
		a.println(memberHelp)
	}
}

func (a *App) setPolicy(arg string) error {
	policy, err := gallery.ParsePolicy(arg)
	if err != nil {
		return err
	}
	a.state.SetPolicy(policy)
	a.println("Category policy:", policy)
	a.show()
	return nil
}

func (a *App) goToPage(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("page needs a number, got %q", arg)
	}
	page, err := a.state.SetPage(n)
	if err != nil {
		return err
	}
	if page.Clamped {
		a.println(fmt.Sprintf("Only %d pages, showing the last one.", page.Count))
	}
	a.show()
	return nil
}

func (a *App) show() {
	RenderView(a.out, a.state.View(a.api.Session().Role))
}
