package maps

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"googlemaps.github.io/maps"
)

// ErrNoResult is returned when the geocoder knows no place by that name.
var ErrNoResult = errors.New("no geocoding result")

// Destination is the geocoded form of an extracted city.
type Destination struct {
	Name             string  `json:"name"`
	Country          string  `json:"country,omitempty"`
	FormattedAddress string  `json:"formatted_address"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	PlaceID          string  `json:"place_id,omitempty"`
}

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a new GeocodeService with the given API Key.
// Extra client options (e.g. maps.WithBaseURL) are appended after the key.
func NewGeocodeService(apiKey string, opts ...maps.ClientOption) (*GeocodeService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// ResolveCity geocodes a city name and returns the best match.
func (s *GeocodeService) ResolveCity(ctx context.Context, city string) (*Destination, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrNoResult
	}

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  city,
		Language: "en",
	})
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}

	best := results[0]
	dest := &Destination{
		Name:             city,
		FormattedAddress: best.FormattedAddress,
		Lat:              best.Geometry.Location.Lat,
		Lng:              best.Geometry.Location.Lng,
		PlaceID:          best.PlaceID,
	}
	for _, comp := range best.AddressComponents {
		switch {
		case slices.Contains(comp.Types, "locality"):
			dest.Name = comp.LongName
		case slices.Contains(comp.Types, "country"):
			dest.Country = comp.LongName
		}
	}
	return dest, nil
}
