package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueClient is the subset of *redis.Client the outbox needs.
type QueueClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

type outboxEntry struct {
	Message
	QueuedAt time.Time `json:"queued_at"`
}

// RedisSender pushes messages onto a list consumed by a mail worker.
type RedisSender struct {
	client QueueClient
	queue  string
}

func NewRedisSender(client QueueClient, queue string) *RedisSender {
	return &RedisSender{client: client, queue: queue}
}

func (s *RedisSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(outboxEntry{Message: msg, QueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := s.client.LPush(ctx, s.queue, payload).Err(); err != nil {
		return fmt.Errorf("push notification to %s: %w", s.queue, err)
	}
	return nil
}
