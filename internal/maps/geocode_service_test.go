package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

const geocodeOK = `{
  "status": "OK",
  "results": [{
    "formatted_address": "Lisbon, Portugal",
    "place_id": "ChIJO_PkYRozGQ0R0DaQ5L3rAAQ",
    "types": ["locality", "political"],
    "geometry": {"location": {"lat": 38.7223, "lng": -9.1393}, "location_type": "APPROXIMATE"},
    "address_components": [
      {"long_name": "Lisboa", "short_name": "Lisboa", "types": ["locality", "political"]},
      {"long_name": "Portugal", "short_name": "PT", "types": ["country", "political"]}
    ]
  }]
}`

func newTestService(t *testing.T, body string) (*GeocodeService, *string) {
	t.Helper()
	var address string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	svc, err := NewGeocodeService("AIza-test", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return svc, &address
}

func TestResolveCity(t *testing.T) {
	svc, address := newTestService(t, geocodeOK)

	dest, err := svc.ResolveCity(context.Background(), " Lisbon ")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", *address, "address query should be trimmed")
	assert.Equal(t, "Lisboa", dest.Name)
	assert.Equal(t, "Portugal", dest.Country)
	assert.Equal(t, 38.7223, dest.Lat)
	assert.Equal(t, -9.1393, dest.Lng)
	assert.Equal(t, "Lisbon, Portugal", dest.FormattedAddress)
}

func TestResolveCityNoResults(t *testing.T) {
	svc, _ := newTestService(t, `{"status": "ZERO_RESULTS", "results": []}`)
	_, err := svc.ResolveCity(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestResolveCityBlank(t *testing.T) {
	svc, _ := newTestService(t, geocodeOK)
	_, err := svc.ResolveCity(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestResolveCityAPIError(t *testing.T) {
	svc, _ := newTestService(t, `{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []}`)
	_, err := svc.ResolveCity(context.Background(), "Lisbon")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResult)
}
