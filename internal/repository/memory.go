package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Nikocoro/prubas123/internal/models"
)

// MemoryUserRepository keeps users in process memory. It backs the
// "memory" database driver and the package tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return ErrUserExists
	}
	r.users[user.Username] = user
	return nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]models.Profile)}
}

func (r *MemoryProfileRepository) Create(_ context.Context, profile models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile.UpdatedAt = nil
	r.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *MemoryProfileRepository) GetByID(_ context.Context, id string) (models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}
	return cloneProfile(profile), nil
}

func (r *MemoryProfileRepository) List(_ context.Context) ([]models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, cloneProfile(p))
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].ID < profiles[j].ID
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (r *MemoryProfileRepository) Update(_ context.Context, profile models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.profiles[profile.ID]
	if !ok {
		return ErrProfileNotFound
	}
	profile.CreatedAt = current.CreatedAt
	r.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *MemoryProfileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[id]; !ok {
		return ErrProfileNotFound
	}
	delete(r.profiles, id)
	return nil
}

func (r *MemoryProfileRepository) PhotoInUse(_ context.Context, photo string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if p.Photo == photo {
			return true, nil
		}
	}
	return false, nil
}

func cloneProfile(p models.Profile) models.Profile {
	p.Links = append([]string(nil), p.Links...)
	p.Categories = append([]string(nil), p.Categories...)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}
