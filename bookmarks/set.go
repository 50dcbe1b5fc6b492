package bookmarks

import (
	"context"
	"sort"
	"sync"

	"github.com/kidigo/storefront/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrPending is returned by Toggle while a previous toggle on the same
// event has not resolved yet.
var ErrPending = errors.New("bookmark toggle already in flight for this event")

// API is the slice of Client the Set depends on.
type API interface {
	List(ctx context.Context) ([]events.Event, error)
	Add(ctx context.Context, eventID string) error
	Remove(ctx context.Context, eventID string) error
}

// Set tracks bookmark membership optimistically: Toggle flips the local
// state before the request resolves and rolls it back on failure.
type Set struct {
	api API
	log zerolog.Logger

	mu      sync.Mutex
	members map[string]bool
	pending map[string]bool
}

type SetOption func(*Set)

func WithLogger(log zerolog.Logger) SetOption {
	return func(s *Set) { s.log = log }
}

func NewSet(api API, options ...SetOption) *Set {
	s := &Set{
		api:     api,
		log:     zerolog.Nop(),
		members: make(map[string]bool),
		pending: make(map[string]bool),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Contains reports whether the event is currently bookmarked, including
// optimistic state from unresolved toggles.
func (s *Set) Contains(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[eventID]
}

// IDs returns the bookmarked event IDs in sorted order.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Refresh replaces local membership with the server's saved-events list.
// Events with a toggle still in flight keep their optimistic state.
func (s *Set) Refresh(ctx context.Context) error {
	saved, err := s.api.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := make(map[string]bool, len(saved))
	for _, event := range saved {
		fresh[event.ID] = true
	}
	for id := range s.pending {
		if s.members[id] {
			fresh[id] = true
		} else {
			delete(fresh, id)
		}
	}
	s.members = fresh
	return nil
}

// Toggle flips the bookmark state of the event. The local flip happens
// immediately; a failed request rolls it back. A second Toggle on the
// same event returns ErrPending until the first resolves.
func (s *Set) Toggle(ctx context.Context, eventID string) error {
	s.mu.Lock()
	if s.pending[eventID] {
		s.mu.Unlock()
		return errors.Wrap(ErrPending, "[Set.Toggle]")
	}
	adding := !s.members[eventID]
	if adding {
		s.members[eventID] = true
	} else {
		delete(s.members, eventID)
	}
	s.pending[eventID] = true
	s.mu.Unlock()

	var err error
	if adding {
		err = s.api.Add(ctx, eventID)
	} else {
		err = s.api.Remove(ctx, eventID)
	}

	s.mu.Lock()
	delete(s.pending, eventID)
	if err != nil {
		if adding {
			delete(s.members, eventID)
		} else {
			s.members[eventID] = true
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Debug().Str("eventID", eventID).Err(err).Msg("bookmark toggle rolled back")
		return err
	}
	return nil
}
