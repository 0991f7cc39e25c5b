// Package hub fans feed change notifications out to websocket subscribers.
//
// Appends do not talk to subscribers directly: the append path publishes a
// room notification to redis, and every server instance that hears it reloads
// the room's full snapshot and pushes one frame per local subscriber. That
// keeps multiple instances behind a load balancer consistent without any
// instance-to-instance coordination.
package hub

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/groupfeed/internal/logging"
)

const channelPrefix = "feed:"

// SnapshotLoader produces the encoded full snapshot frame for a room.
type SnapshotLoader func(ctx context.Context, room string) ([]byte, error)

// Subscriber is one attached websocket listener. Frames are complete
// snapshot payloads ready to write to the wire.
type Subscriber struct {
	send chan []byte
}

func (s *Subscriber) Frames() <-chan []byte { return s.send }

type Hub struct {
	rdb    *redis.Client
	load   SnapshotLoader
	logger logging.Logger

	mu    sync.Mutex
	rooms map[string]map[*Subscriber]struct{}
}

func New(rdb *redis.Client, load SnapshotLoader, logger logging.Logger) *Hub {
	return &Hub{
		rdb:    rdb,
		load:   load,
		logger: logger.With("module", "hub"),
		rooms:  make(map[string]map[*Subscriber]struct{}),
	}
}

// Join registers a new subscriber on the room and returns its handle.
func (h *Hub) Join(room string) *Subscriber {
	sub := &Subscriber{send: make(chan []byte, 8)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Subscriber]struct{})
	}
	h.rooms[room][sub] = struct{}{}
	return sub
}

// Leave detaches the subscriber and closes its frame channel. Safe to call
// twice; the second call is a no-op.
func (h *Hub) Leave(room string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.rooms[room]; ok {
		if _, member := subs[sub]; member {
			delete(subs, sub)
			close(sub.send)
			if len(subs) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// Subscribers reports how many listeners a room currently has.
func (h *Hub) Subscribers(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// Notify announces a feed change. Every instance, this one included, reacts
// through its redis subscription.
func (h *Hub) Notify(ctx context.Context, room string) error {
	return h.rdb.Publish(ctx, channelPrefix+room, "changed").Err()
}

// Run listens for change notifications until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	pubsub := h.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			room := strings.TrimPrefix(msg.Channel, channelPrefix)
			h.Broadcast(ctx, room)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Broadcast loads the room's current snapshot and pushes it to every local
// subscriber. A subscriber whose buffer is full is dropped rather than
// allowed to stall the rest.
func (h *Hub) Broadcast(ctx context.Context, room string) {
	frame, err := h.load(ctx, room)
	if err != nil {
		h.logger.Error(ctx, "snapshot load failed", "room", room, "error", err)
		return
	}

	h.mu.Lock()
	var stale []*Subscriber
	for sub := range h.rooms[room] {
		select {
		case sub.send <- frame:
		default:
			stale = append(stale, sub)
		}
	}
	for _, sub := range stale {
		delete(h.rooms[room], sub)
		close(sub.send)
	}
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	h.mu.Unlock()

	if len(stale) > 0 {
		h.logger.Warn(ctx, "dropped slow subscribers", "room", room, "count", len(stale))
	}
}
