// Package bookmarks manages the signed-in user's saved events, with an
// optimistic in-memory Set layered over the API client.
package bookmarks

import (
	"context"
	"encoding/json"

	"github.com/kidigo/storefront/events"
	"github.com/kidigo/storefront/gateway"
	"github.com/pkg/errors"
)

type Client struct {
	gw *gateway.Gateway
}

func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// List returns the user's saved events.
func (c *Client) List(ctx context.Context) ([]events.Event, error) {
	resp, err := c.gw.Get(ctx, gateway.EndpointBookmarks)
	if err != nil {
		return nil, err
	}

	var env gateway.Envelope
	if err := resp.DecodeJSON(&env); err != nil {
		return nil, errors.Wrap(err, "[Client.List]")
	}
	var data struct {
		SavedEvents []events.Event `json:"savedEvents"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, errors.Wrap(err, "[Client.List] decode data")
		}
	}
	return data.SavedEvents, nil
}

// Add bookmarks the event.
func (c *Client) Add(ctx context.Context, eventID string) error {
	_, err := c.gw.Post(ctx, gateway.EndpointBookmark(eventID), nil)
	return err
}

// Remove un-bookmarks the event.
func (c *Client) Remove(ctx context.Context, eventID string) error {
	_, err := c.gw.Delete(ctx, gateway.EndpointBookmark(eventID))
	return err
}
