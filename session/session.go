// Package session owns the single authenticated-identity value for the
// running client. All mutation happens through the Store's own
// operations; consumers only read.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kidigo/storefront/gateway"
	"github.com/kidigo/storefront/storage"
	"github.com/kidigo/storefront/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CurrentUserAPI is the backend lookup Refresh depends on.
type CurrentUserAPI interface {
	Me(ctx context.Context) (*users.User, error)
}

// Store holds the session: the cached user record plus the bearer
// token reachable through the token store. The two are kept consistent;
// a session is authenticated iff both are present.
type Store struct {
	mu      sync.RWMutex
	store   storage.Store
	tokens  storage.TokenStore
	api     CurrentUserAPI
	user    *users.User
	loading bool
	log     zerolog.Logger
}

type Option func(*Store)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

func New(store storage.Store, tokens storage.TokenStore, api CurrentUserAPI, options ...Option) *Store {
	s := &Store{
		store:   store,
		tokens:  tokens,
		api:     api,
		loading: true,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Bootstrap hydrates the session from persisted storage, synchronously
// and without any network call: trust is assumed from prior
// persistence. A cached user record with no retrievable token is stale
// and gets discarded.
func (s *Store) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	raw, ok, err := s.store.Get(storage.KeyUser)
	if err != nil {
		return errors.Wrap(err, "[Store.Bootstrap] read user")
	}
	if !ok {
		return nil
	}

	if _, hasToken := s.tokens.Token(); !hasToken {
		s.log.Debug().Msg("discarding stale user record: no token")
		return errors.Wrap(s.store.Delete(storage.KeyUser), "[Store.Bootstrap] discard stale user")
	}

	var user users.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// A corrupt record is as good as no record.
		s.log.Warn().Err(err).Msg("discarding unparseable user record")
		return errors.Wrap(s.store.Delete(storage.KeyUser), "[Store.Bootstrap] discard corrupt user")
	}

	s.user = &user
	return nil
}

// Login sets and persists the user record. When a token is supplied it
// is persisted alongside; the auth client usually already did this from
// the response that produced the call, so the write is duplicate-safe.
func (s *Store) Login(user *users.User, token string) error {
	if user == nil {
		return errors.New("[Store.Login] user is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[Store.Login] marshal user")
	}
	if err := s.store.Set(storage.KeyUser, string(raw)); err != nil {
		return errors.Wrap(err, "[Store.Login] persist user")
	}
	if token != "" {
		if err := s.tokens.SetToken(token); err != nil {
			return errors.Wrap(err, "[Store.Login] persist token")
		}
	}

	s.user = user
	return nil
}

// Logout clears the user from memory and storage and removes the
// token. There is no server-side session to invalidate, so no network
// call is made. Calling it twice leaves the same cleared state.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Store) clearLocked() error {
	s.user = nil
	if err := s.store.Delete(storage.KeyUser); err != nil {
		return errors.Wrap(err, "[Store.Logout] clear user")
	}
	if err := s.tokens.ClearToken(); err != nil {
		return errors.Wrap(err, "[Store.Logout] clear token")
	}
	return nil
}

// Refresh re-fetches the current user from the backend. An
// authentication-rejected response clears the session; any other
// failure propagates without touching state.
func (s *Store) Refresh(ctx context.Context) error {
	if _, ok := s.tokens.Token(); !ok {
		// No token means nothing to refresh; drop any cached user so
		// the session does not sit in an inconsistent half-state.
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.user != nil {
			return s.clearLocked()
		}
		return nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		if gateway.IsAuthError(err) {
			s.log.Debug().Msg("token rejected, clearing session")
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.clearLocked()
		}
		return err
	}

	return s.Login(user, "")
}

// IsAuthenticated reports whether a user is set and a token is
// currently retrievable.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	_, ok := s.tokens.Token()
	return ok
}

// User returns the current user record, or nil when signed out.
func (s *Store) User() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

// IsLoading reports whether Bootstrap has not yet completed.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
