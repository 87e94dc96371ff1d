package bus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisBus is the concrete Bus backed by Redis pub/sub, matching the
// original source's bus topology one-for-one.
type RedisBus struct {
	client *redis.Client
}

// Dial parses a Redis connection URL and verifies connectivity.
func Dial(ctx context.Context, url string) (*RedisBus, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBus{client: client}, nil
}

// SubscribeOrders subscribes to OrdersChannel and streams message payloads
// until ctx is canceled.
func (b *RedisBus) SubscribeOrders(ctx context.Context) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, OrdersChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", OrdersChannel, err)
	}

	out := make(chan []byte, 256)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				out <- []byte(msg.Payload)
			}
		}
	}()
	return out, nil
}

// PublishTrades publishes payload onto TradesChannel.
func (b *RedisBus) PublishTrades(ctx context.Context, payload []byte) error {
	if err := b.client.Publish(ctx, TradesChannel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", TradesChannel).Msg("publish failed")
		return err
	}
	return nil
}

// Close releases the Redis connection.
func (b *RedisBus) Close() error {
	return b.client.Close()
}
