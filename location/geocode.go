package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder resolves coordinates to a city name via the
// OpenStreetMap Nominatim reverse endpoint.
type NominatimGeocoder struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

type GeocoderOption func(*NominatimGeocoder)

func WithHTTPClient(client *http.Client) GeocoderOption {
	return func(g *NominatimGeocoder) { g.client = client }
}

func WithBaseURL(baseURL string) GeocoderOption {
	return func(g *NominatimGeocoder) { g.baseURL = baseURL }
}

func NewNominatimGeocoder(userAgent string, options ...GeocoderOption) *NominatimGeocoder {
	g := &NominatimGeocoder{
		baseURL:   nominatimBaseURL,
		client:    http.DefaultClient,
		userAgent: userAgent,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// ReverseCity resolves coordinates to the nearest settlement name,
// preferring city over town over village.
func (g *NominatimGeocoder) ReverseCity(ctx context.Context, coords Coordinates) (string, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Lng, 'f', -1, 64))
	query.Set("zoom", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "[NominatimGeocoder.ReverseCity]")
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "[NominatimGeocoder.ReverseCity]")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "[NominatimGeocoder.ReverseCity] read body")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("[NominatimGeocoder.ReverseCity] status %d", resp.StatusCode)
	}

	var payload struct {
		Address struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
		} `json:"address"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.Wrap(err, "[NominatimGeocoder.ReverseCity] decode")
	}

	switch {
	case payload.Address.City != "":
		return payload.Address.City, nil
	case payload.Address.Town != "":
		return payload.Address.Town, nil
	case payload.Address.Village != "":
		return payload.Address.Village, nil
	}
	return "", fmt.Errorf("no settlement at %.4f,%.4f", coords.Lat, coords.Lng)
}
