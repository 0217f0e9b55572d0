package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nikocoro/prubas123/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `id, name, photo, links, categories, created_at, updated_at`

func (r *ProfileRepository) Create(ctx context.Context, profile models.Profile) error {
	const query = `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, NULL)
	`

	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Photo,
		nonNil(profile.Links),
		nonNil(profile.Categories),
		profile.CreatedAt,
	)
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	return profile, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// Update replaces every mutable field of the profile in a single statement.
func (r *ProfileRepository) Update(ctx context.Context, profile models.Profile) error {
	const query = `
		UPDATE profiles
		SET name = $2,
		    photo = $3,
		    links = $4,
		    categories = $5,
		    updated_at = $6
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Photo,
		nonNil(profile.Links),
		nonNil(profile.Categories),
		profile.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM profiles WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) PhotoInUse(ctx context.Context, photo string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM profiles WHERE photo = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, photo).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ID,
		&profile.Name,
		&profile.Photo,
		&profile.Links,
		&profile.Categories,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	return profile, err
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
