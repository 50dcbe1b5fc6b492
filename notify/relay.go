// Package notify is the process-wide transient-status channel: any
// asynchronous operation can announce loading, success or error without
// knowing which surface renders it.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindLoading Kind = "loading"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is one transient status entry.
type Notification struct {
	ID      string
	Kind    Kind
	Message string
}

// Listener receives the full active list on every change.
type Listener func([]Notification)

const (
	// Success drains sooner than error: lower urgency.
	defaultSuccessTTL = 3500 * time.Millisecond
	defaultErrorTTL   = 4 * time.Second
)

// Relay is an in-memory publish/subscribe list of active
// notifications, ordered by insertion. Construct one per process and
// pass it to whatever needs it.
type Relay struct {
	mu            sync.Mutex
	notifications []Notification
	listeners     []relayListener
	nextListener  int
	successTTL    time.Duration
	errorTTL      time.Duration
}

type relayListener struct {
	id int
	fn Listener
}

type Option func(*Relay)

// WithTTLs overrides the auto-expiry delays, mainly for tests.
func WithTTLs(success, failure time.Duration) Option {
	return func(r *Relay) {
		r.successTTL = success
		r.errorTTL = failure
	}
}

func NewRelay(options ...Option) *Relay {
	r := &Relay{
		successTTL: defaultSuccessTTL,
		errorTTL:   defaultErrorTTL,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Subscribe registers a listener. It immediately receives the current
// list, then the full list again on every change. The returned func
// unsubscribes.
func (r *Relay) Subscribe(fn Listener) func() {
	r.mu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners = append(r.listeners, relayListener{id: id, fn: fn})
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	fn(snapshot)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// Loading publishes a loading notification and returns its identifier
// so a later Success or Error can upgrade it in place.
func (r *Relay) Loading(message string) string {
	return r.publish(KindLoading, message, "", 0)
}

// Success publishes a success notification, upgrading the one with the
// given identifier if supplied. It auto-expires.
func (r *Relay) Success(message string, id ...string) string {
	return r.publish(KindSuccess, message, firstID(id), r.successTTL)
}

// Error publishes an error notification, upgrading the one with the
// given identifier if supplied. It auto-expires, later than success.
func (r *Relay) Error(message string, id ...string) string {
	return r.publish(KindError, message, firstID(id), r.errorTTL)
}

// Dismiss removes the notification with the given identifier, or every
// notification when none is given.
func (r *Relay) Dismiss(id ...string) {
	r.mu.Lock()
	if target := firstID(id); target != "" {
		r.removeLocked(target)
	} else {
		r.notifications = nil
	}
	listeners, snapshot := r.fanoutLocked()
	r.mu.Unlock()

	dispatch(listeners, snapshot)
}

// Active returns the current notification list.
func (r *Relay) Active() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Relay) publish(kind Kind, message, id string, ttl time.Duration) string {
	r.mu.Lock()
	if id == "" {
		id = uuid.New().String()
		r.notifications = append(r.notifications, Notification{ID: id, Kind: kind, Message: message})
	} else {
		upgraded := false
		for i := range r.notifications {
			if r.notifications[i].ID == id {
				r.notifications[i].Kind = kind
				r.notifications[i].Message = message
				upgraded = true
				break
			}
		}
		if !upgraded {
			r.notifications = append(r.notifications, Notification{ID: id, Kind: kind, Message: message})
		}
	}
	listeners, snapshot := r.fanoutLocked()
	r.mu.Unlock()

	dispatch(listeners, snapshot)

	if ttl > 0 {
		time.AfterFunc(ttl, func() { r.expire(id, kind) })
	}
	return id
}

// expire removes a notification when its auto-dismiss fires, unless it
// was upgraded to a different kind in the meantime.
func (r *Relay) expire(id string, kind Kind) {
	r.mu.Lock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].Kind == kind {
			r.removeLocked(id)
			listeners, snapshot := r.fanoutLocked()
			r.mu.Unlock()
			dispatch(listeners, snapshot)
			return
		}
	}
	r.mu.Unlock()
}

func (r *Relay) removeLocked(id string) {
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return
		}
	}
}

func (r *Relay) snapshotLocked() []Notification {
	snapshot := make([]Notification, len(r.notifications))
	copy(snapshot, r.notifications)
	return snapshot
}

// fanoutLocked captures listeners and state under the lock; dispatch
// happens outside it so a listener can call back into the relay.
func (r *Relay) fanoutLocked() ([]relayListener, []Notification) {
	listeners := make([]relayListener, len(r.listeners))
	copy(listeners, r.listeners)
	return listeners, r.snapshotLocked()
}

func dispatch(listeners []relayListener, snapshot []Notification) {
	for _, l := range listeners {
		l.fn(snapshot)
	}
}

func firstID(id []string) string {
	if len(id) > 0 {
		return id[0]
	}
	return ""
}
