package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/ids"
	"github.com/Nikocoro/prubas123/internal/models"
	"github.com/Nikocoro/prubas123/internal/repository"
	"github.com/Nikocoro/prubas123/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

type AuthService struct {
	users  UserStore
	secret string
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger

	// dummyHash is verified when the username is unknown so both failure
	// paths cost about the same.
	dummyHash []byte
}

func NewAuthService(users UserStore, cfg config.SecurityConfig, log zerolog.Logger) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = security.DefaultTokenTTL
	}
	dummy, err := security.HashPassword(ids.New())
	if err != nil {
		log.Warn().Err(err).Msg("dummy hash generation failed")
	}
	return &AuthService{
		users:     users,
		secret:    cfg.JWTSecret,
		ttl:       ttl,
		now:       time.Now,
		log:       log,
		dummyHash: dummy,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token     string
	Role      models.UserRole
	Username  string
	ExpiresAt time.Time
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	if input.Username == "" || input.Password == "" {
		return AuthResult{}, ErrMissingCredentials
	}

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			if s.dummyHash != nil {
				_, _ = security.VerifyPassword(input.Password, s.dummyHash)
			}
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Msg("stored password hash unreadable")
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	issuedAt := s.now()
	token, err := security.GenerateAccessToken(s.secret, user.Username, string(user.Role), issuedAt, s.ttl)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		Token:     token,
		Role:      user.Role,
		Username:  user.Username,
		ExpiresAt: issuedAt.Add(s.ttl),
	}, nil
}

// Verify checks a presented bearer token against the signing secret and
// the service clock.
func (s *AuthService) Verify(token string) (*security.AccessClaims, error) {
	return security.ParseAccessToken(token, s.secret, s.now())
}

type CreateUserInput struct {
	Username string
	Password string
	Role     models.UserRole
}

func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) error {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" || input.Role == "" {
		return ErrIncompleteData
	}
	if !input.Role.Valid() {
		return ErrInvalidRole
	}

	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("find user: %w", err)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return err
	}

	user := models.User{
		ID:           ids.New(),
		Username:     input.Username,
		PasswordHash: passwordHash,
		Role:         input.Role,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user provisioned")
	return nil
}
