package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/models"
	"github.com/Nikocoro/prubas123/internal/repository"
	"github.com/Nikocoro/prubas123/internal/service"
)

const usersYAML = `
users:
  - username: ana
    password: ana-pw
    role: admin
  - username: bea
    password: bea-pw
    role: member
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newAuth() *service.AuthService {
	return service.NewAuthService(repository.NewMemoryUserRepository(), config.SecurityConfig{
		JWTSecret: "secret",
		TokenTTL:  time.Hour,
	}, zerolog.Nop())
}

func TestLoadUsers(t *testing.T) {
	file, err := LoadUsers(writeFile(t, usersYAML))
	require.NoError(t, err)
	require.Len(t, file.Users, 2)
	assert.Equal(t, UserSeed{Username: "ana", Password: "ana-pw", Role: "admin"}, file.Users[0])

	_, err = LoadUsers(writeFile(t, "users: [oops"))
	assert.Error(t, err)

	_, err = LoadUsers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()
	path := writeFile(t, usersYAML)

	require.NoError(t, Run(ctx, path, auth, zerolog.Nop()))
	require.NoError(t, Run(ctx, path, auth, zerolog.Nop()))

	result, err := auth.Login(ctx, service.LoginInput{Username: "ana", Password: "ana-pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, result.Role)

	result, err = auth.Login(ctx, service.LoginInput{Username: "bea", Password: "bea-pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, result.Role)
}

func TestSeedUsersStopsOnInvalidEntry(t *testing.T) {
	created, err := SeedUsers(context.Background(), newAuth(), []UserSeed{
		{Username: "ana", Password: "pw", Role: "admin"},
		{Username: "root", Password: "pw", Role: "superuser"},
	}, zerolog.Nop())
	assert.Equal(t, 1, created)
	assert.ErrorIs(t, err, service.ErrInvalidRole)
}

func TestRunWithoutPath(t *testing.T) {
	assert.NoError(t, Run(context.Background(), "", newAuth(), zerolog.Nop()))
}
