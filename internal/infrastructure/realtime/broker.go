package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broker carries encoded envelopes between hub instances
type Broker interface {
	Publish(ctx context.Context, payload []byte) error
	// Subscribe returns a channel closed when ctx ends
	Subscribe(ctx context.Context) (<-chan []byte, error)
	Close() error
}

// LocalBroker delivers within the process
type LocalBroker struct {
	mu   sync.RWMutex
	subs []chan []byte
}

// NewLocalBroker creates an in-process broker
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

// Publish hands the payload to every subscriber
func (b *LocalBroker) Publish(ctx context.Context, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- payload:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done
func (b *LocalBroker) Subscribe(ctx context.Context) (<-chan []byte, error) {
	ch := make(chan []byte, 64)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		for i, s := range b.subs {
			if s == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Close is a no-op
func (b *LocalBroker) Close() error {
	return nil
}

// RedisBroker fans out through a Redis pub/sub channel
type RedisBroker struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisBroker creates a broker on the channel name
func NewRedisBroker(client *redis.Client, channel string, logger *zap.Logger) *RedisBroker {
	if channel == "" {
		channel = "hr:chat"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{client: client, channel: channel, logger: logger}
}

// Publish sends the payload to every instance, this one included
func (b *RedisBroker) Publish(ctx context.Context, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe listens on the channel until ctx is done
func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	b.logger.Info("Subscribed to realtime channel", zap.String("channel", b.channel))
	return out, nil
}

// Close leaves the shared client open; the cache factory owns it
func (b *RedisBroker) Close() error {
	return nil
}

var (
	_ Broker = (*LocalBroker)(nil)
	_ Broker = (*RedisBroker)(nil)
)
