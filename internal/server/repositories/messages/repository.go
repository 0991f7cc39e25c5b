// Package messages persists the append-only feed. There is no update or
// delete path: a committed row is immutable for its lifetime.
package messages

import (
	"context"

	"github.com/dmitrijs2005/groupfeed/internal/server/models"
)

// Repository is the durable feed storage surface.
type Repository interface {
	// Insert commits one entry, assigning its id and timestamp atomically in
	// a single statement, and returns the assigned id. On error nothing was
	// committed and nothing becomes visible to any subscriber.
	Insert(ctx context.Context, room, author string, text, imageRef *string) (string, error)

	// Snapshot returns the entire current contents of the room.
	Snapshot(ctx context.Context, room string) (models.Snapshot, error)
}
