package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"tourism-system/internal/cache"
	"tourism-system/internal/clients/geocode"
	"tourism-system/internal/clients/meteo"
)

// Source is the weather fact path consumed by the orchestrator: place name
// in, current conditions out. A nil Snapshot with a nil error means the
// place could not be resolved or the upstream returned nothing.
type Source interface {
	Snapshot(ctx context.Context, placeName string) (*meteo.Snapshot, error)
}

// Agent resolves a place name and fetches its current conditions, caching
// snapshots per coordinate pair.
type Agent struct {
	geocoder geocode.Geocoder
	client   *meteo.Client
	cache    cache.Cache
}

func NewAgent(geocoder geocode.Geocoder, client *meteo.Client, c cache.Cache) *Agent {
	return &Agent{geocoder: geocoder, client: client, cache: c}
}

var errUnavailable = errors.New("weather unavailable")

func (a *Agent) Snapshot(ctx context.Context, placeName string) (*meteo.Snapshot, error) {
	location, err := a.geocoder.Resolve(ctx, placeName)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, nil
	}

	key := cache.WeatherKey(location.Latitude, location.Longitude)
	data, err := a.cache.GetOrSet(ctx, key, cache.WeatherTTL, func() (interface{}, error) {
		snapshot, err := a.client.Fetch(ctx, location.Latitude, location.Longitude, placeName)
		if err != nil {
			return nil, err
		}
		if snapshot == nil {
			// Not cached: a transient upstream failure should not stick
			// around for the full TTL.
			return nil, errUnavailable
		}
		return snapshot, nil
	})
	if err != nil {
		if errors.Is(err, errUnavailable) {
			log.Warn().Str("place", placeName).Msg("Weather upstream returned no data")
			return nil, nil
		}
		return nil, err
	}

	var snapshot meteo.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	// The cache is keyed by coordinates, so a snapshot fetched under one
	// spelling of a place carries that spelling's name.
	snapshot.PlaceName = placeName
	return &snapshot, nil
}
