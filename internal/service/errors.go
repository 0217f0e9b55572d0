package service

import (
	"errors"

	"github.com/Nikocoro/prubas123/internal/repository"
)

var (
	ErrMissingCredentials = errors.New("username and password required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncompleteData     = errors.New("incomplete data")
	ErrInvalidRole        = errors.New("invalid role")
	ErrProfileIDRequired  = errors.New("profile id required")
	ErrInvalidPhoto       = errors.New("invalid photo")
	ErrStorageDisabled    = errors.New("photo storage is not configured")

	ErrUserExists      = repository.ErrUserExists
	ErrProfileNotFound = repository.ErrProfileNotFound
)
