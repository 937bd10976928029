package models

// ReactionKind is one of the fixed emotion tags a user can attach to a post
// or a comment. A user holds at most one reaction per entity.
type ReactionKind string

// Supported reaction kinds.
const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionHaha  ReactionKind = "haha"
	ReactionWow   ReactionKind = "wow"
	ReactionSad   ReactionKind = "sad"
	ReactionAngry ReactionKind = "angry"
)

// ReactionKinds lists every supported reaction kind in display order.
var ReactionKinds = []ReactionKind{
	ReactionLike,
	ReactionLove,
	ReactionHaha,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

// Valid reports whether k is a supported reaction kind.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// ReactionCounts maps each reaction kind to the number of users currently
// holding it on an entity.
type ReactionCounts map[ReactionKind]int64

// UserReactions maps a user ID to the single reaction kind that user holds on
// an entity. Absence of a key means the user has no reaction.
type UserReactions map[uint]ReactionKind

// NewReactionCounts returns a counts map with every kind zeroed, the shape
// posts and comments are created with.
func NewReactionCounts() ReactionCounts {
	counts := make(ReactionCounts, len(ReactionKinds))
	for _, k := range ReactionKinds {
		counts[k] = 0
	}
	return counts
}

// Total returns the number of users currently holding any reaction.
func (c ReactionCounts) Total() int64 {
	var sum int64
	for _, n := range c {
		sum += n
	}
	return sum
}

// ToggleReaction applies a single user's toggle of kind to the counts and
// per-user mappings, mutating both in place:
//   - same kind as the user's current reaction: the reaction is removed
//   - different kind: the old reaction is replaced by the new one
//   - no current reaction: the new reaction is added
//
// It returns the user's previous kind ("" if none) and whether the user now
// holds kind. Counts never go below zero.
func ToggleReaction(counts ReactionCounts, users UserReactions, userID uint, kind ReactionKind) (previous ReactionKind, active bool) {
	previous = users[userID]

	if previous == kind {
		decrement(counts, kind)
		delete(users, userID)
		return previous, false
	}

	if previous != "" {
		decrement(counts, previous)
	}
	counts[kind]++
	users[userID] = kind
	return previous, true
}

func decrement(counts ReactionCounts, kind ReactionKind) {
	if counts[kind] > 0 {
		counts[kind]--
	}
}
