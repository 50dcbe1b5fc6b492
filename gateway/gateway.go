// Package gateway is the single chokepoint for backend calls. It owns
// request construction, bearer-token injection and the normalization of
// every failure class into one APIError shape.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/kidigo/storefront/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Gateway issues all HTTP requests to the backend. Feature clients
// (auth, events, categories, bookmarks) are thin endpoint-to-verb
// mappings on top of it with no error handling of their own.
type Gateway struct {
	baseURL string
	client  *http.Client
	tokens  storage.TokenStore
	log     zerolog.Logger
}

type Option func(*Gateway)

func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) {
		g.log = log
	}
}

// New creates a Gateway for the given base URL. The token store is
// consulted on every request; callers never set auth headers
// themselves.
func New(baseURL string, tokens storage.TokenStore, options ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		tokens:  tokens,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Tokens exposes the gateway's token store; the session store uses its
// removal primitive on logout.
func (g *Gateway) Tokens() storage.TokenStore {
	return g.tokens
}

// Response is a successful (2xx) backend reply.
type Response struct {
	StatusCode int
	Body       []byte
	// IsJSON reports whether the response declared a JSON content type.
	// Non-JSON bodies are returned as raw text in Body.
	IsJSON bool
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	return errors.Wrap(json.Unmarshal(r.Body, v), "[Response.DecodeJSON]")
}

// Envelope is the backend's standard success wrapper.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do performs one request. body, when non-nil, is serialized as JSON.
// Failures of any class come back as *APIError; a non-2xx response is
// never returned as a success.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Gateway.Do] marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.Do] build request")
	}

	req.Header.Set("Content-Type", "application/json")
	if token, ok := g.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("transport failure")
		return nil, newTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := normalizeError(resp.StatusCode, respBody)
		g.log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).
			Str("message", apiErr.Message).Msg("request failed")
		return nil, apiErr
	}

	contentType := resp.Header.Get("Content-Type")
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		IsJSON:     strings.Contains(contentType, "application/json"),
	}, nil
}

// Verb wrappers. These exist purely to avoid repeating the method
// string and carry no extra semantics.

func (g *Gateway) Get(ctx context.Context, path string) (*Response, error) {
	return g.Do(ctx, http.MethodGet, path, nil)
}

func (g *Gateway) Post(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, http.MethodPost, path, body)
}

func (g *Gateway) Put(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, http.MethodPut, path, body)
}

func (g *Gateway) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, http.MethodPatch, path, body)
}

func (g *Gateway) Delete(ctx context.Context, path string) (*Response, error) {
	return g.Do(ctx, http.MethodDelete, path, nil)
}
