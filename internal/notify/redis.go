package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBroker 通过 Redis Pub/Sub 转发事件，多个 API 实例可共享同一会话的推送。
type RedisBroker struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisBroker 创建 Redis Broker。
func NewRedisBroker(client *redis.Client, logger *slog.Logger) *RedisBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBroker{client: client, logger: logger}
}

// Publish 实现 Broker。
func (b *RedisBroker) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := Channel(msg.SessionID)
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

// Subscribe 实现 Broker。
func (b *RedisBroker) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, func(), error) {
	channel := Channel(sessionID)
	pubsub := b.client.Subscribe(ctx, channel)
	// 等待订阅确认，避免丢失紧随其后的消息。
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %q: %w", channel, err)
	}
	b.logger.Info("RedisBroker: subscribed to redis channel", slog.String("channel", channel))

	out := make(chan []byte, subscriberBuffer)
	subCtx, stop := context.WithCancel(ctx)
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			_ = pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		in := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-subCtx.Done():
					return
				}
			}
		}
	}()
	return out, cancel, nil
}
