package meteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"tourism-system/internal/metrics"
)

// Snapshot is the current conditions for one location.
type Snapshot struct {
	Temperature     float64 `json:"temperature"`
	RainProbability float64 `json:"rain_probability"`
	PlaceName       string  `json:"place_name"`
}

// Client fetches current conditions from the Open-Meteo forecast API.
// A nil Snapshot with a nil error signals that the upstream was
// unreachable or returned garbage; the caller treats that as "no data".
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type forecastResponse struct {
	Current struct {
		Temperature2m            float64 `json:"temperature_2m"`
		PrecipitationProbability float64 `json:"precipitation_probability"`
	} `json:"current"`
}

func (c *Client) Fetch(ctx context.Context, lat, lon float64, placeName string) (*Snapshot, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	params.Set("current", "temperature_2m,precipitation_probability")
	params.Set("forecast_days", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("open-meteo", "error").Inc()
		log.Error().Err(err).Str("place", placeName).Msg("Weather request failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("open-meteo", "error").Inc()
		log.Error().Int("status", resp.StatusCode).Str("place", placeName).Msg("Weather API error")
		return nil, nil
	}

	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.UpstreamRequests.WithLabelValues("open-meteo", "error").Inc()
		log.Error().Err(err).Str("place", placeName).Msg("Failed to decode weather response")
		return nil, nil
	}
	metrics.UpstreamRequests.WithLabelValues("open-meteo", "ok").Inc()

	return &Snapshot{
		Temperature:     data.Current.Temperature2m,
		RainProbability: data.Current.PrecipitationProbability,
		PlaceName:       placeName,
	}, nil
}
