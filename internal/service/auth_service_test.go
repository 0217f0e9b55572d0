package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/models"
	"github.com/Nikocoro/prubas123/internal/repository"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newAuthService(t *testing.T) (*AuthService, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewAuthService(repository.NewMemoryUserRepository(), config.SecurityConfig{
		JWTSecret: "test-secret",
		TokenTTL:  2 * time.Hour,
	}, zerolog.Nop()).WithClock(clk.now)
	return svc, clk
}

func TestLoginIssuesTokenWithStoredRole(t *testing.T) {
	ctx := context.Background()
	svc, clk := newAuthService(t)

	for _, u := range []CreateUserInput{
		{Username: "ana", Password: "pw-ana", Role: models.RoleAdmin},
		{Username: "bea", Password: "pw-bea", Role: models.RoleMember},
	} {
		require.NoError(t, svc.CreateUser(ctx, u))

		result, err := svc.Login(ctx, LoginInput{Username: u.Username, Password: u.Password})
		require.NoError(t, err)
		assert.Equal(t, u.Role, result.Role)

		claims, err := svc.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, string(u.Role), claims.Role)
		assert.Equal(t, u.Username, claims.Username)
	}

	result, err := svc.Login(ctx, LoginInput{Username: "ana", Password: "pw-ana"})
	require.NoError(t, err)

	clk.advance(2*time.Hour - time.Minute)
	_, err = svc.Verify(result.Token)
	require.NoError(t, err)

	clk.advance(2 * time.Minute)
	_, err = svc.Verify(result.Token)
	assert.Error(t, err)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	require.NoError(t, svc.CreateUser(ctx, CreateUserInput{Username: "ana", Password: "pw", Role: models.RoleMember}))

	_, unknownErr := svc.Login(ctx, LoginInput{Username: "nobody", Password: "pw"})
	_, wrongErr := svc.Login(ctx, LoginInput{Username: "ana", Password: "bad"})

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginRequiresBothFields(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), LoginInput{Username: "ana"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = svc.Login(context.Background(), LoginInput{Password: "pw"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	assert.ErrorIs(t, svc.CreateUser(ctx, CreateUserInput{Username: "x", Password: "y"}), ErrIncompleteData)
	assert.ErrorIs(t, svc.CreateUser(ctx, CreateUserInput{Username: "x", Password: "y", Role: "root"}), ErrInvalidRole)

	require.NoError(t, svc.CreateUser(ctx, CreateUserInput{Username: "x", Password: "y", Role: models.RoleMember}))
	assert.ErrorIs(t, svc.CreateUser(ctx, CreateUserInput{Username: "x", Password: "z", Role: models.RoleAdmin}), ErrUserExists)
}
