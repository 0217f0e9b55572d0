package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nikocoro/prubas123/internal/ids"
	"github.com/Nikocoro/prubas123/internal/models"
)

type ProfileStore interface {
	Create(ctx context.Context, profile models.Profile) error
	GetByID(ctx context.Context, id string) (models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Update(ctx context.Context, profile models.Profile) error
	Delete(ctx context.Context, id string) error
}

// ProfileCache stores the list tagged with a generation that every
// Invalidate advances. Set must drop a list read under an older generation.
type ProfileCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context) ([]models.Profile, bool, error)
	Set(ctx context.Context, generation int64, profiles []models.Profile) error
	Invalidate(ctx context.Context) error
}

type PhotoReleaser interface {
	ReleasePhoto(ctx context.Context, photo string) error
}

type ProfileService struct {
	profiles ProfileStore
	cache    ProfileCache
	releaser PhotoReleaser
	now      func() time.Time
	log      zerolog.Logger

	// set after a failed invalidation; reads skip the cache until one succeeds
	cacheStale atomic.Bool
}

// NewProfileService accepts nil cache and releaser.
func NewProfileService(profiles ProfileStore, cache ProfileCache, releaser PhotoReleaser, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		cache:    cache,
		releaser: releaser,
		now:      time.Now,
		log:      log,
	}
}

func (s *ProfileService) WithClock(now func() time.Time) *ProfileService {
	s.now = now
	return s
}

type ProfileInput struct {
	Name       string
	Photo      string
	Links      models.StringList
	Categories models.StringList
}

func (in ProfileInput) normalize() (ProfileInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Photo = strings.TrimSpace(in.Photo)
	if in.Name == "" || in.Photo == "" || !in.Links.Present() || !in.Categories.Present() {
		return ProfileInput{}, ErrIncompleteData
	}
	in.Links = compact(in.Links)
	in.Categories = compact(in.Categories)
	return in, nil
}

func compact(items models.StringList) models.StringList {
	out := make(models.StringList, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	if s.cache == nil || !s.cacheUsable(ctx) {
		return s.load(ctx)
	}

	cached, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile cache read failed")
	} else if ok {
		return cached, nil
	}

	generation, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile cache generation read failed")
		return s.load(ctx)
	}

	profiles, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, generation, profiles); err != nil {
		s.log.Warn().Err(err).Msg("profile cache write failed")
	}
	return profiles, nil
}

func (s *ProfileService) load(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// cacheUsable retries a pending invalidation before the cache is trusted
// again.
func (s *ProfileService) cacheUsable(ctx context.Context) bool {
	if !s.cacheStale.Load() {
		return true
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return false
	}
	s.cacheStale.Store(false)
	s.log.Info().Msg("profile cache invalidation recovered")
	return true
}

// Create stores a new profile and returns its server-assigned id.
func (s *ProfileService) Create(ctx context.Context, input ProfileInput) (string, error) {
	input, err := input.normalize()
	if err != nil {
		return "", err
	}

	profile := models.Profile{
		ID:         ids.New(),
		Name:       input.Name,
		Photo:      input.Photo,
		Links:      input.Links,
		Categories: input.Categories,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return "", fmt.Errorf("create profile: %w", err)
	}
	s.invalidate(ctx)

	s.log.Info().Str("profile_id", profile.ID).Msg("profile created")
	return profile.ID, nil
}

// Update replaces every mutable field; there are no partial updates.
func (s *ProfileService) Update(ctx context.Context, id string, input ProfileInput) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrIncompleteData
	}
	input, err := input.normalize()
	if err != nil {
		return err
	}

	current, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return err
	}

	updatedAt := s.now().UTC()
	profile := models.Profile{
		ID:         id,
		Name:       input.Name,
		Photo:      input.Photo,
		Links:      input.Links,
		Categories: input.Categories,
		CreatedAt:  current.CreatedAt,
		UpdatedAt:  &updatedAt,
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return err
	}
	s.invalidate(ctx)

	if current.Photo != profile.Photo {
		s.release(ctx, current.Photo)
	}
	s.log.Info().Str("profile_id", id).Msg("profile updated")
	return nil
}

func (s *ProfileService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrProfileIDRequired
	}

	current, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.release(ctx, current.Photo)

	s.log.Info().Str("profile_id", id).Msg("profile deleted")
	return nil
}

func (s *ProfileService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.cacheStale.Store(true)
		s.log.Error().Err(err).Msg("profile cache invalidation failed")
	}
}

func (s *ProfileService) release(ctx context.Context, photo string) {
	if s.releaser == nil || photo == "" {
		return
	}
	if err := s.releaser.ReleasePhoto(ctx, photo); err != nil {
		s.log.Warn().Err(err).Str("photo", photo).Msg("enqueue photo release failed")
	}
}
