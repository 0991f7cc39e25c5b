// Package feed gives the client its read and write path against the shared
// conversation feed: a live full-snapshot subscription per room, and an
// append-only write capability. The feed itself is external shared state:
// many clients append concurrently, the feed assigns each accepted entry its
// id and timestamp atomically at commit, and every subscriber receives the
// entire current room contents on every change (not a delta).
package feed

import "context"

// RawEntry is one undecoded feed entry as delivered inside a snapshot.
// Timestamp is nil while the feed has not yet stamped the entry. A well-formed
// entry has exactly one of Text and ImageRef set; enforcing that is the
// reconciler's job, not the transport's.
type RawEntry struct {
	Author    string  `json:"author"`
	Timestamp *int64  `json:"timestamp,omitempty"`
	Text      *string `json:"text,omitempty"`
	ImageRef  *string `json:"imageRef,omitempty"`
}

// RawSnapshot is the complete current contents of a room's feed, keyed by the
// feed-assigned entry id.
type RawSnapshot map[string]RawEntry

// OutgoingEntry is an append request. The feed assigns id and timestamp; the
// client never supplies them.
type OutgoingEntry struct {
	Author   string  `json:"author"`
	Text     *string `json:"text,omitempty"`
	ImageRef *string `json:"imageRef,omitempty"`
}

// Subscription is one live listener on a room.
//
// Snapshots delivers emissions in the order the transport observed them. The
// channel is closed when the subscription ends, either by Unsubscribe or by a
// transport failure; in the latter case Err returns the failure once the
// channel is closed.
type Subscription interface {
	Snapshots() <-chan RawSnapshot

	// Err reports why the snapshot channel was closed. It returns nil after
	// a deliberate Unsubscribe.
	Err() error

	// Unsubscribe stops delivery. It is idempotent: calling it twice, or
	// after the subscription already failed, is a no-op. After it returns no
	// further emissions occur on Snapshots.
	Unsubscribe()
}

// Client is the feed transport surface.
type Client interface {
	// Subscribe establishes exactly one logical listener on the room.
	Subscribe(ctx context.Context, roomID string) (Subscription, error)

	// Append submits entry for commit and returns the feed-assigned id. It
	// reports success only after the feed has durably committed the entry;
	// on failure no partial entry is visible to any subscriber.
	Append(ctx context.Context, roomID string, entry OutgoingEntry) (string, error)
}
