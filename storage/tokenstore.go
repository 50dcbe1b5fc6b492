package storage

// TokenStore is the single place the bearer credential lives. The HTTP
// gateway reads it on every request and the auth clients write it after
// a successful login or OTP verification.
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string) error
	ClearToken() error
}

type tokenStore struct {
	store Store
}

// NewTokenStore binds a TokenStore to the token key of an underlying
// Store.
func NewTokenStore(store Store) TokenStore {
	return &tokenStore{store: store}
}

func (ts *tokenStore) Token() (string, bool) {
	token, ok, err := ts.store.Get(KeyToken)
	if err != nil || token == "" {
		return "", false
	}
	return token, ok
}

func (ts *tokenStore) SetToken(token string) error {
	return ts.store.Set(KeyToken, token)
}

func (ts *tokenStore) ClearToken() error {
	return ts.store.Delete(KeyToken)
}
