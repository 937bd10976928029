package realtime

import (
	"context"
	"sort"
	"sync"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

// NameResolver looks up a user's current display name.
type NameResolver interface {
	DisplayName(ctx context.Context, userID uint) (string, error)
}

// Subscription delivers fresh thread snapshots until cancelled. Each
// element on Updates is the complete, ordered slice of comments for the
// subscribed scope.
type Subscription struct {
	Updates <-chan []models.Comment

	cancel func()
	once   sync.Once
}

// Cancel stops the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// CommentSynchronizer keeps subscribers' views of comment threads in sync
// with the store. Every change tick triggers a full re-read of the
// subscribed scope; ticks arriving during a refresh coalesce into one
// follow-up refresh.
type CommentSynchronizer struct {
	comments repository.CommentRepository
	broker   Broker
	resolver NameResolver
	log      *observability.Logger
}

// NewCommentSynchronizer creates a synchronizer over the given store and broker.
func NewCommentSynchronizer(
	comments repository.CommentRepository,
	broker Broker,
	resolver NameResolver,
	log *observability.Logger,
) *CommentSynchronizer {
	return &CommentSynchronizer{comments: comments, broker: broker, resolver: resolver, log: log}
}

// SubscribeTopLevel streams the post's top-level comments, newest first.
// The first snapshot is delivered without waiting for a change tick.
func (s *CommentSynchronizer) SubscribeTopLevel(ctx context.Context, postID uint) (*Subscription, error) {
	read := func(ctx context.Context) ([]models.Comment, error) {
		return s.TopLevelSnapshot(ctx, postID)
	}
	return s.subscribe(ctx, PostCommentsChannel(postID), "top-level", read)
}

// SubscribeReplies streams the replies of one top-level comment, oldest first.
func (s *CommentSynchronizer) SubscribeReplies(ctx context.Context, postID, parentID uint) (*Subscription, error) {
	read := func(ctx context.Context) ([]models.Comment, error) {
		return s.RepliesSnapshot(ctx, postID, parentID)
	}
	return s.subscribe(ctx, PostCommentsChannel(postID), "replies", read)
}

// TopLevelSnapshot returns one enriched, newest-first read of the post's
// top-level comments.
func (s *CommentSynchronizer) TopLevelSnapshot(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments, err := s.comments.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, comments)
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
	return comments, nil
}

// RepliesSnapshot returns one enriched, oldest-first read of a comment's replies.
func (s *CommentSynchronizer) RepliesSnapshot(ctx context.Context, postID, parentID uint) ([]models.Comment, error) {
	replies, err := s.comments.ListReplies(ctx, postID, parentID)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, replies)
	sort.SliceStable(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	return replies, nil
}

func (s *CommentSynchronizer) subscribe(
	ctx context.Context,
	channel, scope string,
	read func(ctx context.Context) ([]models.Comment, error),
) (*Subscription, error) {
	msgs, stop, err := s.broker.Subscribe(ctx, channel)
	if err != nil {
		return nil, models.NewRemoteFaultError(err)
	}

	updates := make(chan []models.Comment, 1)
	ticks := make(chan struct{}, 1)
	done := make(chan struct{})

	// Tick pump. Collapses bursts of change notifications into at most
	// one pending refresh.
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

	// Refresh worker. Serializes re-reads so a snapshot is never built
	// from overlapping reads.
	go func() {
		defer close(updates)
		refresh := func() {
			snapshot, err := read(ctx)
			if err != nil {
				s.log.Warn("thread refresh failed", "scope", scope, "error", err)
				return
			}
			observability.SyncRefreshes.WithLabelValues(scope).Inc()
			// Replace a stale undelivered snapshot with the fresh one.
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

	sub := &Subscription{Updates: updates}
	sub.cancel = func() {
		stop()
		close(done)
	}
	return sub, nil
}

// enrich swaps each comment's stored author name for the user's current
// one. A missing user becomes the placeholder name; lookup faults leave
// the stored name in place so one bad profile never breaks the thread.
func (s *CommentSynchronizer) enrich(ctx context.Context, comments []models.Comment) {
	if s.resolver == nil {
		return
	}
	for i := range comments {
		name, err := s.resolver.DisplayName(ctx, comments[i].UserID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				comments[i].DisplayName = models.UnknownUserName
			} else {
				s.log.Warn("display name lookup failed",
					"user_id", comments[i].UserID, "error", err)
			}
			continue
		}
		if name != "" {
			comments[i].DisplayName = name
		}
	}
}
