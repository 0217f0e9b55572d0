package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	TaskPhotoRelease = "photo.release"
	TaskPhotoSweep   = "photo.sweep"
)

// Publisher appends maintenance tasks to a redis stream. A nil *Publisher
// drops every task.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{client: client, stream: stream}
}

func (p *Publisher) Publish(ctx context.Context, taskType string, fields map[string]any) error {
	if p == nil {
		return nil
	}

	values := map[string]any{"type": taskType}
	for k, v := range fields {
		values[k] = v
	}

	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Result()
	return err
}

// ReleasePhoto asks the worker to drop photo from storage once no profile
// references it.
func (p *Publisher) ReleasePhoto(ctx context.Context, photo string) error {
	return p.Publish(ctx, TaskPhotoRelease, map[string]any{"photo": photo})
}
