package sync

import (
	"context"
	stdsync "sync"

	"github.com/dmitrijs2005/groupfeed/internal/client/feed"
	"github.com/dmitrijs2005/groupfeed/internal/client/models"
	"github.com/dmitrijs2005/groupfeed/internal/logging"
)

// State is the presentation state exposed to the view layer.
type State int

const (
	// StateLoading: subscribed (or about to be), first snapshot not yet
	// reconciled.
	StateLoading State = iota
	// StateReady: at least one snapshot reconciled; Messages holds the
	// current ordered view.
	StateReady
	// StateError: the subscription failed. Automatic updates halt until the
	// consumer re-subscribes with Start.
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Synchronizer owns the subscription lifecycle for one room and maintains the
// Loading/Ready/Error state machine. Snapshot events are processed one at a
// time in arrival order; there is never a concurrent reconciliation for the
// same subscription. Publish operations run independently and never touch
// this state.
//
// There is no built-in retry: after a subscription failure the synchronizer
// stays in StateError until the consumer calls Start again.
type Synchronizer struct {
	client   feed.Client
	logger   logging.Logger
	onChange func()

	mu       stdsync.Mutex
	state    State
	messages []models.Message
	lastErr  error
	sub      feed.Subscription
	gen      int
}

func NewSynchronizer(client feed.Client, logger logging.Logger) *Synchronizer {
	return &Synchronizer{
		client: client,
		logger: logger.With("module", "synchronizer"),
		state:  StateLoading,
	}
}

// OnChange registers a callback invoked after every state or message change.
// It is called without internal locks held; the view reads the new state via
// State and Messages. Must be set before Start.
func (s *Synchronizer) OnChange(fn func()) {
	s.onChange = fn
}

// Start subscribes to the room and begins applying snapshots. Calling Start
// while a subscription is active replaces it: the previous handle is
// unsubscribed whether the new subscribe succeeds or fails, so a failed
// restart lands in StateError with no stale handle still feeding state. On
// success the state is Loading until the first snapshot is reconciled.
func (s *Synchronizer) Start(ctx context.Context, roomID string) error {
	sub, err := s.client.Subscribe(ctx, roomID)
	if err != nil {
		s.mu.Lock()
		old := s.sub
		s.sub = nil
		s.gen++
		s.state = StateError
		s.lastErr = err
		s.mu.Unlock()
		if old != nil {
			old.Unsubscribe()
		}
		s.notify()
		return err
	}

	s.mu.Lock()
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	s.sub = sub
	s.gen++
	gen := s.gen
	s.state = StateLoading
	s.lastErr = nil
	s.mu.Unlock()
	s.notify()

	go s.run(ctx, sub, gen)
	return nil
}

// run applies snapshots from one subscription handle until it ends. The
// generation guard keeps a stale handle (replaced or stopped) from clobbering
// the state owned by a newer one.
func (s *Synchronizer) run(ctx context.Context, sub feed.Subscription, gen int) {
	for snap := range sub.Snapshots() {
		msgs, dropped := Reconcile(snap)
		if dropped > 0 {
			s.logger.Warn(ctx, "skipped malformed snapshot entries", "count", dropped)
		}

		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.state = StateReady
		s.messages = msgs
		s.mu.Unlock()
		s.notify()
	}

	err := sub.Err()
	if err == nil {
		return // deliberate unsubscribe
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = StateError
	s.lastErr = err
	s.sub = nil
	s.mu.Unlock()

	s.logger.Error(ctx, "subscription failed", "error", err)
	s.notify()
}

// Stop tears the active subscription down. Safe to call from any state and
// any number of times; the underlying unsubscribe happens exactly once per
// handle.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.gen++
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// State returns the current presentation state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a copy of the current ordered message view.
func (s *Synchronizer) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Err returns the failure that moved the synchronizer into StateError, or nil.
func (s *Synchronizer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// DismissError clears a subscription failure. The state leaves StateError
// only once a fresh subscription is established via Start; without one the
// synchronizer stays in StateError.
func (s *Synchronizer) DismissError() {
	s.mu.Lock()
	if s.state != StateError {
		s.mu.Unlock()
		return
	}
	s.lastErr = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
