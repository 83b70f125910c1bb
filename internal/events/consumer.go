package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Consumer writes every published dish and order event to the log, giving an
// audit trail of mutations across all running instances.
type Consumer struct {
	client *redis.Client
	log    *zap.Logger
}

func NewConsumer(client *redis.Client, log *zap.Logger) *Consumer {
	return &Consumer{client: client, log: log}
}

// Subscribe blocks until ctx is cancelled or the subscription closes.
func (c *Consumer) Subscribe(ctx context.Context, patterns ...string) {
	sub := c.client.PSubscribe(ctx, patterns...)
	defer sub.Close()
	ch := sub.Channel()

	c.log.Info("subscribed to event channels", zap.Strings("patterns", patterns))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.handle(msg.Channel, msg.Payload)
		}
	}
}

func (c *Consumer) handle(channel, payload string) {
	var record struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		c.log.Warn("failed to decode event", zap.String("channel", channel), zap.Error(err))
		return
	}

	fields := []zap.Field{zap.String("channel", channel), zap.String("record_id", record.ID)}
	if record.Status != "" {
		fields = append(fields, zap.String("status", record.Status))
	}
	c.log.Info("event received", fields...)
}
