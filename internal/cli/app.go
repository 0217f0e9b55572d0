// Package cli is the terminal front-end of the gallery.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/Nikocoro/prubas123/internal/client"
	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/gallery"
	"github.com/Nikocoro/prubas123/internal/models"
)

// API is the part of client.Client the terminal needs.
type API interface {
	Login(ctx context.Context, username, password string) (client.Session, error)
	Logout()
	Session() client.Session
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	AddProfile(ctx context.Context, form client.ProfileForm) error
	EditProfile(ctx context.Context, id string, form client.ProfileForm) error
	DeleteProfile(ctx context.Context, id string) error
	AddUser(ctx context.Context, username, password string, role models.UserRole) error
	UploadPhoto(ctx context.Context, filename string, r io.Reader) (string, error)
}

type App struct {
	api    API
	state  *gallery.State
	reader *bufio.Reader
	out    io.Writer
	log    zerolog.Logger

	// openFile is replaced in tests.
	openFile func(name string) (io.ReadCloser, error)
}

func NewApp(api API, cfg *config.ClientConfig, in io.Reader, out io.Writer, log zerolog.Logger) (*App, error) {
	policy, err := gallery.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	return &App{
		api:    api,
		state:  gallery.NewState(policy, cfg.PageSize),
		reader: bufio.NewReader(in),
		out:    out,
		log:    log,
		openFile: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}, nil
}

func (a *App) Run(ctx context.Context) {
	runREPL(ctx, a, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.api.Session().LoggedIn()
}

func (a *App) status() string {
	session := a.api.Session()
	if !session.LoggedIn() {
		return "guest"
	}
	return fmt.Sprintf("%s (%s)", session.Username, session.Role)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// report prints err the way the user should see it. API errors carry the
// server's own message.
func (a *App) report(err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		a.println("Error:", apiErr.Message)
	case errors.Is(err, client.ErrSubmitInFlight):
		a.println("Please wait, the previous submission has not finished.")
	default:
		a.println("Error:", err.Error())
	}
	a.log.Debug().Err(err).Msg("command failed")
}
