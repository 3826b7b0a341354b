package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notify:user:"

// UserChannel returns the pub/sub channel carrying a user's live updates.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// RedisPusher publishes user notifications to per-user Redis channels; the
// websocket gateway subscribes and forwards to connected sessions. Publishing
// to a channel with no subscriber is a successful no-op, which matches the
// best-effort contract.
type RedisPusher struct {
	client *redis.Client
}

func NewRedisPusher(client *redis.Client) (*RedisPusher, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisPusher{client: client}, nil
}

func (p *RedisPusher) PushToUser(ctx context.Context, userID string, payload UserNotification) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	if err := p.client.Publish(ctx, UserChannel(userID), body).Err(); err != nil {
		return fmt.Errorf("failed to publish push payload: %w", err)
	}
	return nil
}
