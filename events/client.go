package events

import (
	"context"
	"encoding/json"

	"github.com/kidigo/storefront/gateway"
	"github.com/pkg/errors"
)

type Client struct {
	gw *gateway.Gateway
}

func New(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// Page is one page of listings.
type Page struct {
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}

// List returns events matching the filters.
func (c *Client) List(ctx context.Context, filters Filters) (*Page, error) {
	resp, err := c.gw.Get(ctx, gateway.EndpointEvents+filters.Encode())
	if err != nil {
		return nil, err
	}

	var page Page
	if err := decodeData(resp, &page); err != nil {
		return nil, errors.Wrap(err, "[Client.List]")
	}
	return &page, nil
}

// Get returns one event by ID.
func (c *Client) Get(ctx context.Context, eventID string) (*Event, error) {
	resp, err := c.gw.Get(ctx, gateway.EndpointEvent(eventID))
	if err != nil {
		return nil, err
	}

	var data struct {
		Event *Event `json:"event"`
	}
	if err := decodeData(resp, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.Get]")
	}
	return data.Event, nil
}

// ByCategory returns the events in one category.
func (c *Client) ByCategory(ctx context.Context, categoryID string) ([]Event, error) {
	return c.listPath(ctx, gateway.EndpointEventsByCategory(categoryID))
}

// ByOrganizer returns the events run by one organizer.
func (c *Client) ByOrganizer(ctx context.Context, organizerID string) ([]Event, error) {
	return c.listPath(ctx, gateway.EndpointEventsByOrganizer(organizerID))
}

// ByCity returns the events in one city.
func (c *Client) ByCity(ctx context.Context, cityID string) ([]Event, error) {
	return c.listPath(ctx, gateway.EndpointEventsByCity(cityID))
}

func (c *Client) listPath(ctx context.Context, path string) ([]Event, error) {
	resp, err := c.gw.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var data struct {
		Events []Event `json:"events"`
	}
	if err := decodeData(resp, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.listPath]")
	}
	return data.Events, nil
}

func decodeData(resp *gateway.Response, v any) error {
	var env gateway.Envelope
	if err := resp.DecodeJSON(&env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(env.Data, v), "decode data")
}
