package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Channels published to Redis. Subscribers are outside this service.
const (
	EventJobApplied            = "EVENT_JOB_APPLIED"
	EventContractCreated       = "EVENT_CONTRACT_CREATED"
	EventContractStatusChanged = "EVENT_CONTRACT_STATUS_CHANGED"
	EventMessageCreated        = "EVENT_MESSAGE_CREATED"
)

// Publisher sends domain events. Publishing is never part of a write: a
// failed publish is logged and the request still succeeds.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", channel, err)
	}
	return p.rdb.Publish(ctx, channel, data).Err()
}

// NopPublisher drops every event. Used when REDIS_URL is not set.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func publish(ctx context.Context, p Publisher, channel string, payload map[string]string) {
	if p == nil {
		return
	}
	payload["type"] = channel
	if err := p.Publish(ctx, channel, payload); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}
