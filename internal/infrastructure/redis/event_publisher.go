package redis

import (
	"context"
	"encoding/json"

	"github.com/amenelu/mekina/internal/domain"

	"github.com/go-redis/redis/v8"
)

const eventChannel = "marketplace_events"

type RedisEventPublisher struct {
	client *redis.Client
}

func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{client: client}
}

func (r *RedisEventPublisher) PublishEvent(ctx context.Context, event *domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, eventChannel, data).Err()
}
