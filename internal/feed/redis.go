package feed

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisChannel = "pitboss:feed"

type redisBus struct {
	cli     *redis.Client
	channel string
}

// NewRedis publishes invalidations over a Redis pub/sub channel. Events are
// fire-and-forget; a subscriber that was offline simply refetches on its
// next poll, so no replay is needed.
func NewRedis(url, channel string) Bus {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[feed] redis parse url: %v", err)
		return NewMemory()
	}
	if channel == "" {
		channel = redisChannel
	}
	return &redisBus{cli: redis.NewClient(opt), channel: channel}
}

func newRedisFromEnv() Bus {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	return NewRedis(url, os.Getenv("FEED_REDIS_CHANNEL"))
}

func (b *redisBus) Publish(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return b.cli.Publish(ctx, b.channel, data).Err()
}

func (b *redisBus) Subscribe() (<-chan Event, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := b.cli.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	out := make(chan Event, 64)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Printf("[feed] drop malformed event: %v", err)
				continue
			}
			select {
			case out <- evt:
			default:
			}
		}
	}()
	stop := func() {
		_ = sub.Close()
		cancel()
	}
	return out, stop, nil
}

func (b *redisBus) Close() error { return b.cli.Close() }
