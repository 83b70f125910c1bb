package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	DishCreatedChannel  = "dish.created"
	DishUpdatedChannel  = "dish.updated"
	OrderCreatedChannel = "order.created"
	OrderUpdatedChannel = "order.updated"
	OrderDeletedChannel = "order.deleted"
)

// Patterns matches every channel this service publishes on.
var Patterns = []string{"dish.*", "order.*"}

type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, data).Err()
}
