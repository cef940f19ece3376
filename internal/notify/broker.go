package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Broker 在同一会话的编辑端与预览端之间转发事件。
type Broker interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe 返回消息负载通道，调用 cancel 后通道关闭。
	Subscribe(ctx context.Context, sessionID string) (payloads <-chan []byte, cancel func(), err error)
}

// subscriberBuffer 是每个本地订阅者的缓冲消息数，满时丢弃最新消息。
const subscriberBuffer = 16

// LocalBroker 是单进程内的 Broker 实现。
type LocalBroker struct {
	mu     sync.Mutex
	subs   map[string]map[chan []byte]struct{}
	logger *slog.Logger
}

// NewLocalBroker 创建进程内 Broker。
func NewLocalBroker(logger *slog.Logger) *LocalBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalBroker{
		subs:   make(map[string]map[chan []byte]struct{}),
		logger: logger,
	}
}

// Publish 实现 Broker。
func (b *LocalBroker) Publish(_ context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[msg.SessionID] {
		select {
		case ch <- data:
		default:
			b.logger.Warn("LocalBroker: subscriber is slow, dropping message",
				slog.String("channel", Channel(msg.SessionID)),
			)
		}
	}
	return nil
}

// Subscribe 实现 Broker。ctx 结束时订阅也会被取消。
func (b *LocalBroker) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, subscriberBuffer)

	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan []byte]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			delete(b.subs[sessionID], ch)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel, nil
}

// Subscribers 返回会话当前的订阅者数量。
func (b *LocalBroker) Subscribers(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[sessionID])
}
