package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"tourism-system/internal/cache"
	"tourism-system/internal/clients/geocode"
	"tourism-system/internal/clients/overpass"
)

// Source is the points-of-interest fact path consumed by the orchestrator.
// An empty list can mean either an unresolvable place or an upstream with
// no data; distinguishing the two is the orchestrator's job.
type Source interface {
	TouristPlaces(ctx context.Context, placeName string, limit int) ([]overpass.POI, error)
}

// Agent resolves a place name and fetches ranked points of interest around
// it, caching non-empty result lists per (coordinates, limit).
type Agent struct {
	geocoder geocode.Geocoder
	client   *overpass.Client
	cache    cache.Cache
}

func NewAgent(geocoder geocode.Geocoder, client *overpass.Client, c cache.Cache) *Agent {
	return &Agent{geocoder: geocoder, client: client, cache: c}
}

var errNoResults = errors.New("no places found")

func (a *Agent) TouristPlaces(ctx context.Context, placeName string, limit int) ([]overpass.POI, error) {
	location, err := a.geocoder.Resolve(ctx, placeName)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return []overpass.POI{}, nil
	}

	key := cache.PlacesKey(location.Latitude, location.Longitude, limit)
	data, err := a.cache.GetOrSet(ctx, key, cache.PlacesTTL, func() (interface{}, error) {
		pois, err := a.client.Fetch(ctx, location.Latitude, location.Longitude, limit)
		if err != nil {
			return nil, err
		}
		if len(pois) == 0 {
			// Empty lists are not cached; Overpass timeouts are common and
			// should be retried on the next request, not pinned for an hour.
			return nil, errNoResults
		}
		return pois, nil
	})
	if err != nil {
		if errors.Is(err, errNoResults) {
			log.Warn().Str("place", placeName).Msg("No points of interest returned")
			return []overpass.POI{}, nil
		}
		return nil, err
	}

	var pois []overpass.POI
	if err := json.Unmarshal(data, &pois); err != nil {
		return nil, fmt.Errorf("failed to decode cached places: %w", err)
	}
	return pois, nil
}
