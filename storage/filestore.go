package storage

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// FileStore persists all keys as a single JSON document. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// truncated store behind.
//
// A bearer token sits in this file, so the on-disk bytes can optionally
// be sealed with ChaCha20-Poly1305 via WithSealingKey.
type FileStore struct {
	mu      sync.Mutex
	path    string
	values  map[string]string
	sealKey []byte
	closed  bool
}

var _ Store = (*FileStore)(nil)

type FileStoreOption func(*FileStore)

// WithSealingKey enables at-rest encryption of the store file. The key
// must be chacha20poly1305.KeySize (32) bytes.
func WithSealingKey(key []byte) FileStoreOption {
	return func(fs *FileStore) {
		fs.sealKey = key
	}
}

// NewFileStore opens (or creates) a file-backed store at path.
func NewFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	fs := &FileStore{
		path:   path,
		values: make(map[string]string),
	}
	for _, opt := range options {
		opt(fs)
	}
	if fs.sealKey != nil && len(fs.sealKey) != chacha20poly1305.KeySize {
		return nil, errors.Errorf("[NewFileStore] sealing key must be %d bytes", chacha20poly1305.KeySize)
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return "", false, ErrClosed
	}
	value, ok := fs.values[key]
	return value, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	fs.values[key] = value
	return fs.flush()
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	if _, ok := fs.values[key]; !ok {
		return nil
	}
	delete(fs.values, key)
	return fs.flush()
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closed = true
	return nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[FileStore.load] read")
	}
	if len(data) == 0 {
		return nil
	}
	if fs.sealKey != nil {
		if data, err = fs.unseal(data); err != nil {
			return errors.Wrap(err, "[FileStore.load] unseal")
		}
	}
	if err := json.Unmarshal(data, &fs.values); err != nil {
		return errors.Wrap(err, "[FileStore.load] parse")
	}
	return nil
}

func (fs *FileStore) flush() error {
	data, err := json.Marshal(fs.values)
	if err != nil {
		return errors.Wrap(err, "[FileStore.flush] marshal")
	}
	if fs.sealKey != nil {
		if data, err = fs.seal(data); err != nil {
			return errors.Wrap(err, "[FileStore.flush] seal")
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".kidigo-*")
	if err != nil {
		return errors.Wrap(err, "[FileStore.flush] temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "[FileStore.flush] write")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "[FileStore.flush] close")
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "[FileStore.flush] rename")
	}
	return nil
}

func (fs *FileStore) seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(fs.sealKey)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (fs *FileStore) unseal(data []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(fs.sealKey)
	if err != nil {
		return nil, err
	}
	if len(data) < aead.NonceSize() {
		return nil, errors.New("sealed store too short")
	}
	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
