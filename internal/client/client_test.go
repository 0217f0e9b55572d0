package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/handlers"
	"github.com/Nikocoro/prubas123/internal/models"
	"github.com/Nikocoro/prubas123/internal/repository"
	"github.com/Nikocoro/prubas123/internal/server"
	"github.com/Nikocoro/prubas123/internal/service"
)

func newGalleryServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		Environment: "test",
		HTTP:        config.HTTPConfig{BasePaths: []string{"/.netlify/functions"}, MaxUploadMB: 1},
		Security:    config.SecurityConfig{JWTSecret: "secret", TokenTTL: time.Hour},
	}
	log := zerolog.Nop()
	auth := service.NewAuthService(repository.NewMemoryUserRepository(), cfg.Security, log)
	require.NoError(t, auth.CreateUser(context.Background(), service.CreateUserInput{Username: "ana", Password: "ana-pw", Role: models.RoleAdmin}))

	hs := handlers.NewHandlerSet(log, cfg, nil, handlers.Services{
		Auth:     auth,
		Profiles: service.NewProfileService(repository.NewMemoryProfileRepository(), nil, nil, log),
		Photos:   service.NewPhotoService(nil, 1<<20, log),
	}, nil, nil)

	srv := httptest.NewServer(server.NewEngine(cfg, log, hs))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstServer(t *testing.T) {
	ctx := context.Background()
	srv := newGalleryServer(t)
	c := NewWithHTTPClient(srv.URL+"/.netlify/functions/", nil)

	_, err := c.ListProfiles(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Login(ctx, "ana", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)

	session, err := c.Login(ctx, "ana", "ana-pw")
	require.NoError(t, err)
	assert.True(t, session.IsAdmin())
	assert.Equal(t, session, c.Session())

	require.NoError(t, c.AddProfile(ctx, ProfileForm{
		Name:       "Ana",
		Photo:      "https://img.example.com/ana.jpg",
		Links:      []string{"instagram.com/ana"},
		Categories: []string{"Gamer"},
	}))

	profiles, err := c.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	id := profiles[0].ID

	require.NoError(t, c.EditProfile(ctx, id, ProfileForm{
		Name:       "Ana Maria",
		Photo:      "https://img.example.com/ana.jpg",
		Links:      []string{"ana.dev"},
		Categories: []string{"Gamer", "Chef"},
	}))
	profiles, err = c.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", profiles[0].Name)
	assert.Equal(t, []string{"Gamer", "Chef"}, profiles[0].Categories)

	require.NoError(t, c.AddUser(ctx, "bea", "bea-pw", models.RoleMember))
	err = c.AddUser(ctx, "bea", "bea-pw", models.RoleMember)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "user already exists", apiErr.Message)

	_, err = c.UploadPhoto(ctx, "a.png", strings.NewReader("x"))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)

	require.NoError(t, c.DeleteProfile(ctx, id))
	err = c.DeleteProfile(ctx, id)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	member := NewWithHTTPClient(srv.URL+"/.netlify/functions", nil)
	_, err = member.Login(ctx, "bea", "bea-pw")
	require.NoError(t, err)
	err = member.AddProfile(ctx, ProfileForm{Name: "x", Photo: "y", Links: []string{"z"}, Categories: []string{"w"}})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	c.Logout()
	assert.False(t, c.Session().LoggedIn())
}

func TestConnectionErrors(t *testing.T) {
	ctx := context.Background()

	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer html.Close()

	_, err := NewWithHTTPClient(html.URL, nil).Login(ctx, "ana", "pw")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, ConnectionErrorMessage, apiErr.Message)

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()

	_, err = NewWithHTTPClient(url, nil).Login(ctx, "ana", "pw")
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Equal(t, ConnectionErrorMessage, apiErr.Error())
}

func TestSubmitGuard(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	unblock := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/addProfile" {
			entered <- struct{}{}
			<-unblock
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	c := NewWithHTTPClient(srv.URL, nil)
	c.session = Session{Username: "ana", Token: "t", Role: models.RoleAdmin}

	first := make(chan error, 1)
	go func() { first <- c.AddProfile(ctx, ProfileForm{Name: "Ana"}) }()
	<-entered

	assert.ErrorIs(t, c.AddProfile(ctx, ProfileForm{Name: "Ana"}), ErrSubmitInFlight)
	assert.NoError(t, c.DeleteProfile(ctx, "1"), "other forms are not blocked")

	close(unblock)
	require.NoError(t, <-first)

	go func() {
		<-entered
	}()
	assert.NoError(t, c.AddProfile(ctx, ProfileForm{Name: "Ana"}))
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: 404, Message: "profile not found"}
	assert.Equal(t, "profile not found (status 404)", err.Error())

	wrapped := &APIError{Message: ConnectionErrorMessage, Err: context.DeadlineExceeded}
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))
}

func TestAddProfileWithEmptyLists(t *testing.T) {
	ctx := context.Background()
	srv := newGalleryServer(t)
	c := NewWithHTTPClient(srv.URL+"/.netlify/functions/", nil)

	_, err := c.Login(ctx, "ana", "ana-pw")
	require.NoError(t, err)

	require.NoError(t, c.AddProfile(ctx, ProfileForm{
		Name:       "Dani",
		Photo:      "https://img.example.com/dani.jpg",
		Links:      []string{},
		Categories: []string{},
	}))

	err = c.AddProfile(ctx, ProfileForm{Name: "Eli", Photo: "https://img.example.com/eli.jpg"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	profiles, err := c.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Empty(t, profiles[0].Links)
	assert.Empty(t, profiles[0].Categories)
}
