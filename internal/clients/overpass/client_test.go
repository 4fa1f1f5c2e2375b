package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, 5000)
}

func TestFetchRanksAndLimits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{
			"elements": [
				{"lat": 35.001, "lon": 135.0, "tags": {"name": "City Park", "leisure": "park"}},
				{"lat": 35.002, "lon": 135.0, "tags": {"name": "Old Castle", "historic": "castle"}},
				{"lat": 35.003, "lon": 135.0, "tags": {"name": "Grand Museum", "tourism": "museum"}},
				{"lat": 35.004, "lon": 135.0, "tags": {"name": "Quiet Temple", "amenity": "place_of_worship"}}
			]
		}`))
	})

	pois, err := client.Fetch(context.Background(), 35.0, 135.0, 3)
	require.NoError(t, err)
	require.Len(t, pois, 3)
	assert.Equal(t, "Grand Museum", pois[0].Name)
	assert.Equal(t, "museum", pois[0].Type)
	assert.Equal(t, "Old Castle", pois[1].Name)
	assert.Equal(t, "City Park", pois[2].Name)
}

func TestFetchUpstreamErrorYieldsEmptyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too busy", http.StatusGatewayTimeout)
	})

	pois, err := client.Fetch(context.Background(), 35.0, 135.0, 5)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestFetchErrorRemarkYieldsEmptyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"remark": "runtime error: query timed out", "elements": []}`))
	})

	pois, err := client.Fetch(context.Background(), 35.0, 135.0, 5)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestRankDeduplicatesByName(t *testing.T) {
	elements := []element{
		{Lat: 35.001, Lon: 135.0, Tags: map[string]string{"name": "Golden Pavilion", "tourism": "attraction"}},
		{Lat: 35.002, Lon: 135.0, Tags: map[string]string{"name": "GOLDEN PAVILION", "historic": "monument"}},
	}

	pois := rank(elements, 35.0, 135.0, 5000, 10)
	require.Len(t, pois, 1)
	assert.Equal(t, "Golden Pavilion", pois[0].Name)
}

func TestRankDropsDistantArtifacts(t *testing.T) {
	elements := []element{
		{Lat: 35.001, Lon: 135.0, Tags: map[string]string{"name": "Near Shrine", "tourism": "attraction"}},
		// ~11 km away, well past the 1.5x radius cutoff.
		{Lat: 35.1, Lon: 135.0, Tags: map[string]string{"name": "Far Relation", "tourism": "attraction"}},
	}

	pois := rank(elements, 35.0, 135.0, 5000, 10)
	require.Len(t, pois, 1)
	assert.Equal(t, "Near Shrine", pois[0].Name)
}

func TestRankKeepsElementsWithoutCoordinates(t *testing.T) {
	elements := []element{
		{Tags: map[string]string{"name": "Centerless Way", "tourism": "attraction"}},
	}

	pois := rank(elements, 35.0, 135.0, 5000, 10)
	require.Len(t, pois, 1)
	assert.Equal(t, "Centerless Way", pois[0].Name)
}

func TestRankUsesCenterForWays(t *testing.T) {
	far := &struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}{Lat: 35.1, Lon: 135.0}

	elements := []element{
		{Center: far, Tags: map[string]string{"name": "Sprawling Relation", "tourism": "attraction"}},
	}

	pois := rank(elements, 35.0, 135.0, 5000, 10)
	assert.Empty(t, pois)
}

func TestRankSkipsUnnamedElements(t *testing.T) {
	elements := []element{
		{Lat: 35.001, Lon: 135.0, Tags: map[string]string{"tourism": "attraction"}},
	}
	assert.Empty(t, rank(elements, 35.0, 135.0, 5000, 10))
}

func TestDescriptionTagIsCarried(t *testing.T) {
	elements := []element{
		{Lat: 35.001, Lon: 135.0, Tags: map[string]string{
			"name":        "Grand Museum",
			"tourism":     "museum",
			"description": "National art collection",
		}},
	}

	pois := rank(elements, 35.0, 135.0, 5000, 10)
	require.Len(t, pois, 1)
	require.NotNil(t, pois[0].Description)
	assert.Equal(t, "National art collection", *pois[0].Description)
}
