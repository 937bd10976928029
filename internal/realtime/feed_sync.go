package realtime

import (
	"context"
	"sync"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

const feedPageSize = 50

// FeedSubscription delivers fresh feed snapshots until cancelled.
type FeedSubscription struct {
	Updates <-chan []models.Post

	cancel func()
	once   sync.Once
}

// Cancel stops the subscription. Safe to call more than once.
func (s *FeedSubscription) Cancel() {
	s.once.Do(s.cancel)
}

// FeedSynchronizer re-reads the global post feed whenever a post changes.
type FeedSynchronizer struct {
	posts  repository.PostRepository
	broker Broker
	log    *observability.Logger
}

// NewFeedSynchronizer creates a feed synchronizer over the given store and broker.
func NewFeedSynchronizer(posts repository.PostRepository, broker Broker, log *observability.Logger) *FeedSynchronizer {
	return &FeedSynchronizer{posts: posts, broker: broker, log: log}
}

// Snapshot returns one newest-first read of the feed.
func (s *FeedSynchronizer) Snapshot(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx, feedPageSize, 0)
}

// Subscribe streams feed snapshots, newest first. The first snapshot is
// delivered without waiting for a change tick.
func (s *FeedSynchronizer) Subscribe(ctx context.Context) (*FeedSubscription, error) {
	msgs, stop, err := s.broker.Subscribe(ctx, FeedChannel)
	if err != nil {
		return nil, models.NewRemoteFaultError(err)
	}

	updates := make(chan []models.Post, 1)
	ticks := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ticks <- struct{}{}:
				default:
				}
			}
		}
	}()

	go func() {
		defer close(updates)
		refresh := func() {
			snapshot, err := s.Snapshot(ctx)
			if err != nil {
				s.log.Warn("feed refresh failed", "error", err)
				return
			}
			observability.SyncRefreshes.WithLabelValues("feed").Inc()
			select {
			case updates <- snapshot:
			default:
				select {
				case <-updates:
				default:
				}
				updates <- snapshot
			}
		}

		refresh()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticks:
				refresh()
			}
		}
	}()

	sub := &FeedSubscription{Updates: updates}
	sub.cancel = func() {
		stop()
		close(done)
	}
	return sub, nil
}
