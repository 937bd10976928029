// Package realtime provides change notification channels and the
// synchronizers that keep clients' views of threads and the feed fresh.
package realtime

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// FeedChannel carries ticks for the global post feed.
const FeedChannel = "posts:feed"

// PostCommentsChannel derives the channel name for a post's comment thread.
func PostCommentsChannel(postID uint) string {
	return "comments:post:" + strconv.FormatUint(uint64(postID), 10)
}

// Message is a single payload delivered on a channel.
type Message struct {
	Channel string
	Payload string
}

// Broker fans change notifications out to subscribers. Publishing is
// best-effort; a slow subscriber never blocks a publisher.
type Broker interface {
	Publish(ctx context.Context, channel, payload string) error
	Subscribe(ctx context.Context, channel string) (<-chan Message, func(), error)
}

// NewBroker returns a Redis-backed broker when a client is available and
// an in-process broker otherwise. The in-process fallback keeps single
// node deployments and tests working without Redis.
func NewBroker(rdb *redis.Client) Broker {
	if rdb == nil {
		return newMemoryBroker()
	}
	return &redisBroker{rdb: rdb}
}

type redisBroker struct {
	rdb *redis.Client
}

func (b *redisBroker) Publish(ctx context.Context, channel, payload string) error {
	return b.rdb.Publish(ctx, channel, payload).Err()
}

func (b *redisBroker) Subscribe(ctx context.Context, channel string) (<-chan Message, func(), error) {
	sub := b.rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Message, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- Message{Channel: msg.Channel, Payload: msg.Payload}:
				default:
					// Subscriber is behind; drop the tick. The next one
					// triggers a full re-read anyway.
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}

type memoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan Message
	nextID int
}

func newMemoryBroker() *memoryBroker {
	return &memoryBroker{subs: make(map[string]map[int]chan Message)}
}

func (b *memoryBroker) Publish(_ context.Context, channel, payload string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[channel] {
		select {
		case ch <- Message{Channel: channel, Payload: payload}:
		default:
		}
	}
	return nil
}

func (b *memoryBroker) Subscribe(_ context.Context, channel string) (<-chan Message, func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]chan Message)
	}
	ch := make(chan Message, 16)
	b.subs[channel][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[channel], id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
