// Package storage provides the client's key-value persistence layer:
// the durable home of the bearer token, the cached user record and the
// saved location between process runs.
package storage

import "errors"

// Keys under which the client persists its state. Every value is a
// string; structured records are stored as JSON.
const (
	KeyToken             = "kidigo_token"
	KeyUser              = "kidigo_user"
	KeyLocation          = "kidigo_location"
	KeyLocationRequested = "kidigo_location_requested"
)

var ErrClosed = errors.New("store closed")

// Store is a minimal persistent key-value store. Get reports presence
// explicitly so an empty value can be told apart from a missing key.
// Delete of a missing key is not an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
