// Package bootstrap provisions the accounts a fresh deployment needs before
// anyone can log in.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Nikocoro/prubas123/internal/models"
	"github.com/Nikocoro/prubas123/internal/service"
)

type UserSeed struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type UsersFile struct {
	Users []UserSeed `yaml:"users"`
}

type UserCreator interface {
	CreateUser(ctx context.Context, input service.CreateUserInput) error
}

func LoadUsers(path string) (UsersFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return UsersFile{}, fmt.Errorf("read users file: %w", err)
	}

	var file UsersFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return UsersFile{}, fmt.Errorf("parse users file: %w", err)
	}
	return file, nil
}

// SeedUsers creates every listed user that does not exist yet. Existing
// accounts are left untouched, so the file can stay in place across restarts.
func SeedUsers(ctx context.Context, creator UserCreator, seeds []UserSeed, log zerolog.Logger) (int, error) {
	created := 0
	for i, seed := range seeds {
		err := creator.CreateUser(ctx, service.CreateUserInput{
			Username: seed.Username,
			Password: seed.Password,
			Role:     models.UserRole(seed.Role),
		})
		switch {
		case err == nil:
			created++
			log.Info().Str("username", seed.Username).Str("role", seed.Role).Msg("bootstrap user created")
		case errors.Is(err, service.ErrUserExists):
			log.Debug().Str("username", seed.Username).Msg("bootstrap user already present")
		default:
			return created, fmt.Errorf("seed user #%d (%q): %w", i+1, seed.Username, err)
		}
	}
	return created, nil
}

// Run loads path and seeds its users. An empty path is a no-op.
func Run(ctx context.Context, path string, creator UserCreator, log zerolog.Logger) error {
	if path == "" {
		return nil
	}

	file, err := LoadUsers(path)
	if err != nil {
		return err
	}

	created, err := SeedUsers(ctx, creator, file.Users, log)
	if err != nil {
		return err
	}

	log.Info().Int("created", created).Int("listed", len(file.Users)).Msg("bootstrap users processed")
	return nil
}
