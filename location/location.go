// Package location persists the user's chosen city and wires the
// platform geolocation provider to a reverse geocoder.
package location

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kidigo/storefront/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// requestTimeout bounds how long a geolocation lookup may take.
const requestTimeout = 10 * time.Second

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is the persisted city choice.
type Location struct {
	City        string      `json:"city"`
	Coordinates Coordinates `json:"coordinates"`
}

// Locator is the platform geolocation provider.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// Geocoder resolves coordinates to a city name.
type Geocoder interface {
	ReverseCity(ctx context.Context, coords Coordinates) (string, error)
}

// Service owns the persisted location and the prompt-once flag.
type Service struct {
	store    storage.Store
	locator  Locator
	geocoder Geocoder
	log      zerolog.Logger

	mu        sync.Mutex
	current   *Location
	requested bool
	prompted  bool
}

type Option func(*Service)

func WithLocator(locator Locator) Option {
	return func(s *Service) { s.locator = locator }
}

func WithGeocoder(geocoder Geocoder) Option {
	return func(s *Service) { s.geocoder = geocoder }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func New(store storage.Store, options ...Option) *Service {
	s := &Service{
		store: store,
		log:   zerolog.Nop(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Bootstrap loads the persisted location and the requested flag.
// A corrupt persisted value is discarded rather than surfaced.
func (s *Service) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.store.Get(storage.KeyLocation)
	if err != nil {
		return errors.Wrap(err, "[Service.Bootstrap]")
	}
	if ok {
		var loc Location
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			s.log.Warn().Err(err).Msg("discarding corrupt persisted location")
			_ = s.store.Delete(storage.KeyLocation)
		} else {
			s.current = &loc
		}
	}

	flag, ok, err := s.store.Get(storage.KeyLocationRequested)
	if err != nil {
		return errors.Wrap(err, "[Service.Bootstrap]")
	}
	s.requested = ok && flag == "true"
	s.prompted = false
	return nil
}

// Current returns the persisted location, or nil when none is set.
func (s *Service) Current() *Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	loc := *s.current
	return &loc
}

// ShouldPrompt reports whether the app should ask for the user's
// location: at most once per bootstrap, and never once a request has
// been made before.
func (s *Service) ShouldPrompt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requested || s.prompted || s.current != nil {
		return false
	}
	s.prompted = true
	return true
}

// Save persists the location and marks it as requested.
func (s *Service) Save(city string, coords Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := Location{City: city, Coordinates: coords}
	raw, err := json.Marshal(loc)
	if err != nil {
		return errors.Wrap(err, "[Service.Save]")
	}
	if err := s.store.Set(storage.KeyLocation, string(raw)); err != nil {
		return errors.Wrap(err, "[Service.Save]")
	}
	if err := s.store.Set(storage.KeyLocationRequested, "true"); err != nil {
		return errors.Wrap(err, "[Service.Save]")
	}
	s.current = &loc
	s.requested = true
	return nil
}

// Clear drops the persisted location but keeps the requested flag so
// the user is not prompted again.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(storage.KeyLocation); err != nil {
		return errors.Wrap(err, "[Service.Clear]")
	}
	s.current = nil
	return nil
}

// RequestCurrent asks the platform locator for the device position,
// reverse-geocodes it, and persists the result.
func (s *Service) RequestCurrent(ctx context.Context) (*Location, error) {
	if s.locator == nil {
		return nil, errors.New("[Service.RequestCurrent] no locator configured")
	}
	if s.geocoder == nil {
		return nil, errors.New("[Service.RequestCurrent] no geocoder configured")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	s.mu.Lock()
	s.requested = true
	s.mu.Unlock()
	if err := s.store.Set(storage.KeyLocationRequested, "true"); err != nil {
		return nil, errors.Wrap(err, "[Service.RequestCurrent]")
	}

	coords, err := s.locator.Locate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.RequestCurrent] locate")
	}
	city, err := s.geocoder.ReverseCity(ctx, coords)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.RequestCurrent] reverse geocode")
	}
	if err := s.Save(city, coords); err != nil {
		return nil, err
	}
	return &Location{City: city, Coordinates: coords}, nil
}
