// Package categories is the typed client for the category catalogue.
package categories

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/kidigo/storefront/gateway"
	"github.com/pkg/errors"
)

// Category is one entry of the browsing taxonomy.
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
	EventCount  int    `json:"eventCount,omitempty"`
}

// Filters narrows a category listing.
type Filters struct {
	Search string
	Page   int
	Limit  int
}

func (f Filters) encode() string {
	query := url.Values{}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.Page > 0 {
		query.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		query.Set("limit", strconv.Itoa(f.Limit))
	}
	encoded := query.Encode()
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}

type Client struct {
	gw *gateway.Gateway
}

func New(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// List returns categories matching the filters.
func (c *Client) List(ctx context.Context, filters Filters) ([]Category, error) {
	resp, err := c.gw.Get(ctx, gateway.EndpointCategories+filters.encode())
	if err != nil {
		return nil, err
	}
	var data struct {
		Categories []Category `json:"categories"`
	}
	if err := decodeData(resp, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.List]")
	}
	return data.Categories, nil
}

// Get returns one category by ID.
func (c *Client) Get(ctx context.Context, categoryID string) (*Category, error) {
	resp, err := c.gw.Get(ctx, gateway.EndpointCategory(categoryID))
	if err != nil {
		return nil, err
	}
	var data struct {
		Category *Category `json:"category"`
	}
	if err := decodeData(resp, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.Get]")
	}
	return data.Category, nil
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
