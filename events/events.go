// Package events is the typed client for event browsing: filtered
// listings, detail lookups and the category/organizer/city scopes.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a listing as the backend serializes it.
type Event struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	CategoryID  string          `json:"categoryId,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
	Venue       Venue           `json:"venue,omitempty"`
	Organizer   Organizer       `json:"organizer,omitempty"`
	MinAge      int             `json:"minAge,omitempty"`
	MaxAge      int             `json:"maxAge,omitempty"`
	ImageURLs   []string        `json:"imageUrls,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	StartsAt    time.Time       `json:"startsAt,omitempty"`
	EndsAt      time.Time       `json:"endsAt,omitempty"`
	IsPublished bool            `json:"isPublished,omitempty"`
}

// IsFree reports whether the event costs nothing to attend.
func (e *Event) IsFree() bool {
	return e.Price.IsZero()
}

// Venue is where an event takes place.
type Venue struct {
	Name    string  `json:"name,omitempty"`
	Address string  `json:"address,omitempty"`
	CityID  string  `json:"cityId,omitempty"`
	City    string  `json:"city,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// Organizer is the vendor summary embedded in a listing.
type Organizer struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
}

// Pagination describes one page of a listing response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}
