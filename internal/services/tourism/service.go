package tourism

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"tourism-system/internal/clients/meteo"
	"tourism-system/internal/clients/overpass"
	"tourism-system/internal/services/places"
	"tourism-system/internal/services/weather"
)

// Service orchestrates place extraction, intent classification and the two
// fact paths, degrading gracefully when one or both collaborators fail.
type Service struct {
	weather weather.Source
	places  places.Source
}

func NewService(weatherSource weather.Source, placesSource places.Source) *Service {
	return &Service{weather: weatherSource, places: placesSource}
}

// Process answers one query. It always returns a structured Answer; any
// fault escaping the pipeline is converted into a failure answer rather
// than propagated to the caller.
func (s *Service) Process(ctx context.Context, query, placeOverride string, limit int) (answer *Answer) {
	placeName := strings.TrimSpace(placeOverride)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("query", query).Msg("Unexpected fault while processing query")
			answer = &Answer{
				Success:   false,
				PlaceName: placeName,
				Message:   "An error occurred while processing your request. Please try again.",
				Error:     fmt.Sprintf("%v", r),
			}
		}
	}()

	if limit <= 0 {
		limit = DefaultPlacesLimit
	}

	if placeName == "" {
		placeName = ExtractPlaceName(query)
	}
	if placeName == "" {
		return &Answer{
			Success: false,
			Message: "I couldn't identify the place name from your query. Please specify a place.",
			Error:   ErrCodePlaceNotFound,
		}
	}

	intent := ClassifyIntent(query)
	if !intent.Weather && !intent.Places {
		intent.Places = true
	}

	log.Info().
		Str("place", placeName).
		Bool("wants_weather", intent.Weather).
		Bool("wants_places", intent.Places).
		Msg("Processing query")

	var snapshot *meteo.Snapshot
	var pois []overpass.POI

	if intent.Weather {
		snap, err := s.weather.Snapshot(ctx, placeName)
		if err != nil {
			return s.internalFailure(placeName, query, err)
		}
		if snap == nil {
			// An unresolvable location is indistinguishable from a
			// misspelled place; stop here, before the places path.
			return s.placeNotFound(placeName)
		}
		snapshot = snap
	}

	if intent.Places {
		got, err := s.places.TouristPlaces(ctx, placeName, limit)
		if err != nil {
			return s.internalFailure(placeName, query, err)
		}
		pois = got

		if len(pois) == 0 {
			// The places path can't tell "no such place" from "no data".
			// Reuse the weather path's resolution step as an existence check.
			check, err := s.weather.Snapshot(ctx, placeName)
			if err != nil {
				return s.internalFailure(placeName, query, err)
			}
			if check == nil {
				return s.placeNotFound(placeName)
			}

			if snapshot != nil {
				return &Answer{
					Success:   true,
					PlaceName: placeName,
					Weather:   snapshot,
					Places:    []overpass.POI{},
					Message: fmt.Sprintf("In %s it's currently %.0f°C with a chance of %.0f%% to rain. "+
						"I couldn't fetch tourist attractions at the moment (the places API might be slow or unavailable).",
						placeName, snapshot.Temperature, snapshot.RainProbability),
				}
			}
			return &Answer{
				Success:   true,
				PlaceName: placeName,
				Places:    []overpass.POI{},
				Message:   fmt.Sprintf("In %s I couldn't find any tourist attractions nearby, or the places API is currently unavailable.", placeName),
			}
		}
	}

	return &Answer{
		Success:   true,
		PlaceName: placeName,
		Weather:   snapshot,
		Places:    pois,
		Message:   composeMessage(placeName, snapshot, pois),
	}
}

func composeMessage(placeName string, snapshot *meteo.Snapshot, pois []overpass.POI) string {
	var parts []string

	if snapshot != nil {
		parts = append(parts, fmt.Sprintf("In %s it's currently %.0f°C with a chance of %.0f%% to rain.",
			placeName, snapshot.Temperature, snapshot.RainProbability))
	}

	if len(pois) > 0 {
		if len(parts) > 0 {
			parts = append(parts, "And these are the places you can go:")
		} else {
			parts = append(parts, fmt.Sprintf("In %s these are the places you can go,", placeName))
		}

		names := make([]string, len(pois))
		for i, poi := range pois {
			names[i] = poi.Name
		}
		parts = append(parts, "\n\n"+strings.Join(names, "\n"))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Information about %s.", placeName)
	}
	return strings.Join(parts, " ")
}

func (s *Service) placeNotFound(placeName string) *Answer {
	return &Answer{
		Success:   false,
		PlaceName: placeName,
		Message:   fmt.Sprintf("I don't know if this place exists: %s. Could you check the spelling?", placeName),
		Error:     ErrCodePlaceNotFound,
	}
}

func (s *Service) internalFailure(placeName, query string, err error) *Answer {
	log.Error().Err(err).Str("query", query).Msg("Query processing failed")
	return &Answer{
		Success:   false,
		PlaceName: placeName,
		Message:   "An error occurred while processing your request. Please try again.",
		Error:     err.Error(),
	}
}
