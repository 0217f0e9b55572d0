package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nikocoro/prubas123/internal/queue"
	"github.com/Nikocoro/prubas123/internal/storage"
)

type PhotoStore interface {
	Remove(ctx context.Context, key string) error
	List(ctx context.Context) ([]storage.Object, error)
	URL(key string) string
	KeyFromURL(rawURL string) (string, bool)
}

type PhotoUsage interface {
	PhotoInUse(ctx context.Context, photo string) (bool, error)
}

type Processor struct {
	photos PhotoStore
	usage  PhotoUsage
	grace  time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

type TaskPayload struct {
	Type  string `json:"type"`
	Photo string `json:"photo"`
}

func NewProcessor(photos PhotoStore, usage PhotoUsage, grace time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		photos: photos,
		usage:  usage,
		grace:  grace,
		now:    time.Now,
		logger: logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case queue.TaskPhotoRelease:
		return p.releasePhoto(ctx, payload.Photo)
	case queue.TaskPhotoSweep:
		return p.sweep(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

// releasePhoto removes an uploaded photo unless a profile still points at it.
// URLs outside the store are ignored.
func (p *Processor) releasePhoto(ctx context.Context, photo string) error {
	key, ok := p.photos.KeyFromURL(photo)
	if !ok {
		return nil
	}

	inUse, err := p.usage.PhotoInUse(ctx, photo)
	if err != nil {
		return fmt.Errorf("photo usage: %w", err)
	}
	if inUse {
		p.logger.Debug().Str("photo", photo).Msg("photo still referenced, keeping")
		return nil
	}

	if err := p.photos.Remove(ctx, key); err != nil {
		return err
	}
	p.logger.Info().Str("key", key).Msg("released photo")
	return nil
}

// sweep removes unreferenced objects older than the grace period, which
// covers uploads that were never attached to a profile.
func (p *Processor) sweep(ctx context.Context) error {
	objects, err := p.photos.List(ctx)
	if err != nil {
		return err
	}

	cutoff := p.now().Add(-p.grace)
	removed := 0
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		inUse, err := p.usage.PhotoInUse(ctx, p.photos.URL(obj.Key))
		if err != nil {
			return fmt.Errorf("photo usage: %w", err)
		}
		if inUse {
			continue
		}
		if err := p.photos.Remove(ctx, obj.Key); err != nil {
			p.logger.Error().Err(err).Str("key", obj.Key).Msg("sweep remove failed")
			continue
		}
		removed++
	}

	p.logger.Info().Int("scanned", len(objects)).Int("removed", removed).Msg("photo sweep finished")
	return nil
}
