package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-system/internal/cache"
	"tourism-system/internal/clients/geocode"
	"tourism-system/internal/clients/overpass"
)

type stubGeocoder struct {
	location *geocode.Location
	err      error
}

func (s *stubGeocoder) Resolve(_ context.Context, _ string) (*geocode.Location, error) {
	return s.location, s.err
}

func kyotoLocation() *geocode.Location {
	return &geocode.Location{Latitude: 35.0116, Longitude: 135.7681, DisplayName: "Kyoto, Japan"}
}

func newAgent(t *testing.T, geocoder geocode.Geocoder, handler http.HandlerFunc) *Agent {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAgent(geocoder, overpass.NewClient(srv.URL, 5*time.Second, 5000), cache.NewMemoryCache())
}

const poiBody = `{"elements":[
	{"lat": 35.012, "lon": 135.768, "tags": {"name": "Kinkaku-ji", "tourism": "attraction"}},
	{"lat": 35.013, "lon": 135.769, "tags": {"name": "Fushimi Inari", "tourism": "attraction"}}
]}`

func TestTouristPlacesUnresolvedPlaceIsEmpty(t *testing.T) {
	agent := newAgent(t, &stubGeocoder{}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("places upstream must not be called for an unresolved place")
	})

	pois, err := agent.TouristPlaces(context.Background(), "Xyzzyville", 5)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestTouristPlacesGeocoderErrorPropagates(t *testing.T) {
	agent := newAgent(t, &stubGeocoder{err: assert.AnError}, func(w http.ResponseWriter, r *http.Request) {})

	_, err := agent.TouristPlaces(context.Background(), "Kyoto", 5)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestTouristPlacesCachesNonEmptyResults(t *testing.T) {
	hits := 0
	agent := newAgent(t, &stubGeocoder{location: kyotoLocation()}, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(poiBody))
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		pois, err := agent.TouristPlaces(ctx, "Kyoto", 5)
		require.NoError(t, err)
		require.Len(t, pois, 2)
		assert.Equal(t, "Kinkaku-ji", pois[0].Name)
	}
	assert.Equal(t, 1, hits)
}

func TestTouristPlacesEmptyResultIsNotCached(t *testing.T) {
	hits := 0
	agent := newAgent(t, &stubGeocoder{location: kyotoLocation()}, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"elements":[]}`))
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		pois, err := agent.TouristPlaces(ctx, "Kyoto", 5)
		require.NoError(t, err)
		assert.Empty(t, pois)
	}
	assert.Equal(t, 2, hits)
}

func TestTouristPlacesDifferentLimitsAreCachedSeparately(t *testing.T) {
	hits := 0
	agent := newAgent(t, &stubGeocoder{location: kyotoLocation()}, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(poiBody))
	})

	ctx := context.Background()
	pois, err := agent.TouristPlaces(ctx, "Kyoto", 1)
	require.NoError(t, err)
	assert.Len(t, pois, 1)

	pois, err = agent.TouristPlaces(ctx, "Kyoto", 5)
	require.NoError(t, err)
	assert.Len(t, pois, 2)

	assert.Equal(t, 2, hits)
}
