package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nikocoro/prubas123/internal/models"
)

const (
	profilesKey   = "gallery:profiles:all"
	generationKey = "gallery:profiles:gen"
)

var errStaleGeneration = errors.New("profile list changed since read")

// entry is the stored list, tagged with the generation it was read under.
type entry struct {
	Generation int64                    `json:"generation"`
	Profiles   []models.ProfileDocument `json:"profiles"`
}

// ProfileCache holds the serialized profile list. A nil *ProfileCache is
// valid and behaves as a permanent miss.
//
// Every mutation bumps a generation counter. A list is only written when
// the counter still matches the value observed before the store read, and
// only served when it matches the current counter.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	if client == nil {
		return nil
	}
	return &ProfileCache{client: client, ttl: ttl}
}

// Generation returns the current list generation. Callers read it before
// loading the list from the store and pass it back to Set.
func (c *ProfileCache) Generation(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	return parseGeneration(c.client.Get(ctx, generationKey))
}

// Get returns the cached list and whether a current one was present.
func (c *ProfileCache) Get(ctx context.Context) ([]models.Profile, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	values, err := c.client.MGet(ctx, generationKey, profilesKey).Result()
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var generation int64
	if raw, ok := values[0].(string); ok {
		if generation, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, false, fmt.Errorf("cache generation: %w", err)
		}
	}
	raw, ok := values[1].(string)
	if !ok {
		return nil, false, nil
	}

	var stored entry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	if stored.Generation != generation {
		return nil, false, nil
	}

	profiles := make([]models.Profile, 0, len(stored.Profiles))
	for _, d := range stored.Profiles {
		profiles = append(profiles, d.Profile())
	}
	return profiles, true, nil
}

// Set stores profiles read under generation. The write is skipped when a
// mutation happened in between.
func (c *ProfileCache) Set(ctx context.Context, generation int64, profiles []models.Profile) error {
	if c == nil {
		return nil
	}

	stored := entry{
		Generation: generation,
		Profiles:   make([]models.ProfileDocument, 0, len(profiles)),
	}
	for _, p := range profiles {
		stored.Profiles = append(stored.Profiles, p.Document())
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := parseGeneration(tx.Get(ctx, generationKey))
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, profilesKey, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)

	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate bumps the generation and drops the stored list.
func (c *ProfileCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, profilesKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func parseGeneration(cmd *redis.StringCmd) (int64, error) {
	generation, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return generation, nil
}
