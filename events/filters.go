package events

import (
	"net/url"
	"strconv"
)

// Date filter shorthands understood by the backend alongside plain
// YYYY-MM-DD values.
const (
	DateToday       = "Today"
	DateThisWeekend = "ThisWeekend"
)

// Filters narrows a listing query. Zero-valued fields are omitted from
// the query string entirely.
type Filters struct {
	CityID      string
	CategoryID  string
	DateFilter  string
	MinAge      *int
	MaxAge      *int
	OrganizerID string
	Search      string
	IsPublished *bool
	Page        int
	Limit       int
}

// Encode renders the filters as a URL query string, leading '?'
// included. An empty filter set encodes as "".
func (f Filters) Encode() string {
	query := url.Values{}

	if f.CityID != "" {
		query.Set("cityId", f.CityID)
	}
	if f.CategoryID != "" {
		query.Set("categoryId", f.CategoryID)
	}
	if f.DateFilter != "" {
		query.Set("dateFilter", f.DateFilter)
	}
	if f.MinAge != nil {
		query.Set("minAge", strconv.Itoa(*f.MinAge))
	}
	if f.MaxAge != nil {
		query.Set("maxAge", strconv.Itoa(*f.MaxAge))
	}
	if f.OrganizerID != "" {
		query.Set("organizerId", f.OrganizerID)
	}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.IsPublished != nil {
		query.Set("isPublished", strconv.FormatBool(*f.IsPublished))
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
