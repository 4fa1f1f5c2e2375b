package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tourism-system/internal/cache"
	"tourism-system/internal/metrics"
)

// Location is a place name resolved to coordinates.
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
	PlaceID     int64   `json:"place_id"`
}

// Geocoder resolves a free-text place name to coordinates. A nil Location
// with a nil error means the name could not be resolved; that outcome is
// never reported as an error.
type Geocoder interface {
	Resolve(ctx context.Context, name string) (*Location, error)
}

// Country hints for well-known city names, to steer Nominatim away from
// same-named villages elsewhere.
var cityHints = map[string]string{
	"bangalore":     "India",
	"mumbai":        "India",
	"delhi":         "India",
	"kolkata":       "India",
	"chennai":       "India",
	"hyderabad":     "India",
	"pune":          "India",
	"ahmedabad":     "India",
	"jaipur":        "India",
	"lucknow":       "India",
	"paris":         "France",
	"london":        "United Kingdom",
	"new york":      "United States",
	"tokyo":         "Japan",
	"sydney":        "Australia",
	"dubai":         "United Arab Emirates",
}

// Client queries the Nominatim search API and scores the returned candidates
// to pick the most plausible match for an ambiguous name.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      cache.Cache
}

func NewClient(baseURL, userAgent string, timeout time.Duration, c cache.Cache) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
	}
}

var errUnresolved = errors.New("place not resolved")

func (c *Client) Resolve(ctx context.Context, name string) (*Location, error) {
	key := cache.GeocodeKey(name)
	data, err := c.cache.GetOrSet(ctx, key, cache.GeocodeTTL, func() (interface{}, error) {
		loc, err := c.lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, errUnresolved
		}
		return loc, nil
	})
	if err != nil {
		if errors.Is(err, errUnresolved) {
			return nil, nil
		}
		return nil, err
	}

	var loc Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, fmt.Errorf("failed to decode cached location: %w", err)
	}
	return &loc, nil
}

type nominatimResult struct {
	PlaceID     int64            `json:"place_id"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

func (c *Client) lookup(ctx context.Context, name string) (*Location, error) {
	place := strings.TrimSpace(name)
	placeLower := strings.ToLower(place)

	countryHint := ""
	for city, country := range cityHints {
		if strings.Contains(placeLower, city) {
			countryHint = country
			break
		}
	}

	query := place
	if countryHint != "" && !strings.Contains(placeLower, strings.ToLower(countryHint)) {
		query = fmt.Sprintf("%s, %s", place, countryHint)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "5")
	params.Set("addressdetails", "1")
	params.Set("namedetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("nominatim", "error").Inc()
		log.Error().Err(err).Str("place", name).Msg("Geocoding request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("nominatim", "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Geocoding API error")
		return nil, nil
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		metrics.UpstreamRequests.WithLabelValues("nominatim", "error").Inc()
		log.Error().Err(err).Str("place", name).Msg("Failed to decode geocoding response")
		return nil, nil
	}

	if len(results) == 0 {
		metrics.UpstreamRequests.WithLabelValues("nominatim", "empty").Inc()
		log.Warn().Str("place", name).Msg("No geocoding results")
		return nil, nil
	}
	metrics.UpstreamRequests.WithLabelValues("nominatim", "ok").Inc()

	best := pickBest(results, placeLower, countryHint)

	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return nil, nil
	}
	lon, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return nil, nil
	}

	log.Info().
		Str("place", name).
		Str("resolved", best.DisplayName).
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("Geocoded place")

	return &Location{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: best.DisplayName,
		PlaceID:     best.PlaceID,
	}, nil
}

// pickBest scores every candidate and keeps the highest-scoring one, falling
// back to the first candidate when no score is positive.
func pickBest(results []nominatimResult, placeLower, countryHint string) nominatimResult {
	best := results[0]
	bestScore := 0

	for _, candidate := range results {
		displayLower := strings.ToLower(candidate.DisplayName)
		nameLower := strings.ToLower(candidate.Name)

		score := 0

		firstSegment := strings.TrimSpace(strings.Split(nameLower, ",")[0])
		if placeLower == nameLower || strings.Contains(firstSegment, placeLower) {
			score += 30
		}
		if strings.Contains(displayLower, placeLower) {
			score += 20
		}
		if countryHint != "" {
			if strings.Contains(displayLower, strings.ToLower(countryHint)) {
				score += 25
			} else {
				score -= 15
			}
		}
		switch candidate.Type {
		case "city", "town", "administrative":
			score += 10
		}
		if strings.HasPrefix(displayLower, placeLower) {
			score += 15
		}
		if countryHint != "" {
			hintLower := strings.ToLower(countryHint)
			if strings.Contains(strings.ToLower(candidate.Address.Country), hintLower) {
				score += 20
			}
		}

		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	return best
}
