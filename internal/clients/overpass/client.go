package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tourism-system/internal/metrics"
)

// POI is one ranked point of interest.
type POI struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
}

// Client queries the Overpass API for named tourist features around a
// coordinate. Failures of any kind yield an empty list, never an error the
// orchestrator has to handle separately.
type Client struct {
	baseURL    string
	httpClient *http.Client
	radiusM    int
}

func NewClient(baseURL string, timeout time.Duration, radiusM int) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		radiusM:    radiusM,
	}
}

func (c *Client) buildQuery(lat, lon float64) string {
	return fmt.Sprintf(`[out:json][timeout:20];
(
  node["tourism"]["name"](around:%d,%f,%f);
  way["tourism"]["name"](around:%d,%f,%f);
  relation["tourism"]["name"](around:%d,%f,%f);
  node["historic"]["name"](around:%d,%f,%f);
  way["historic"]["name"](around:%d,%f,%f);
  node["leisure"="park"]["name"](around:%d,%f,%f);
  way["leisure"="park"]["name"](around:%d,%f,%f);
  node["amenity"="place_of_worship"]["name"](around:%d,%f,%f);
  way["amenity"="place_of_worship"]["name"](around:%d,%f,%f);
);
out center 60;`,
		c.radiusM, lat, lon, c.radiusM, lat, lon, c.radiusM, lat, lon,
		c.radiusM, lat, lon, c.radiusM, lat, lon,
		c.radiusM, lat, lon, c.radiusM, lat, lon,
		c.radiusM, lat, lon, c.radiusM, lat, lon)
}

type overpassResponse struct {
	Remark   string    `json:"remark"`
	Elements []element `json:"elements"`
}

type element struct {
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

// Fetch returns up to limit POIs around (lat, lon), deduplicated by
// case-insensitive name and ranked by category priority then proximity.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, limit int) ([]POI, error) {
	query := c.buildQuery(lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to build places request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("overpass", "error").Inc()
		log.Error().Err(err).Msg("Places request failed")
		return []POI{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("overpass", "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Places API error")
		return []POI{}, nil
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.UpstreamRequests.WithLabelValues("overpass", "error").Inc()
		log.Error().Err(err).Msg("Failed to decode places response")
		return []POI{}, nil
	}

	if strings.Contains(strings.ToLower(data.Remark), "error") {
		metrics.UpstreamRequests.WithLabelValues("overpass", "error").Inc()
		log.Error().Str("remark", data.Remark).Msg("Places API error remark")
		return []POI{}, nil
	}
	metrics.UpstreamRequests.WithLabelValues("overpass", "ok").Inc()

	return rank(data.Elements, lat, lon, c.radiusM, limit), nil
}

type candidate struct {
	poi      POI
	priority int
	distance float64
}

func rank(elements []element, lat, lon float64, radiusM, limit int) []POI {
	// Anything much farther than the search radius is an Overpass artifact
	// (huge relations whose center lies outside the search circle).
	cutoff := float64(radiusM) * 1.5

	seen := make(map[string]bool)
	candidates := make([]candidate, 0, len(elements))

	for _, el := range elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		nameKey := strings.ToLower(name)
		if seen[nameKey] {
			continue
		}

		elLat, elLon := el.Lat, el.Lon
		if el.Center != nil {
			elLat, elLon = el.Center.Lat, el.Center.Lon
		}
		dist := haversine(lat, lon, elLat, elLon)
		if elLat != 0 || elLon != 0 {
			if dist > cutoff {
				continue
			}
		}

		seen[nameKey] = true
		candidates = append(candidates, candidate{
			poi:      POI{Name: name, Type: placeType(el.Tags), Description: description(el.Tags)},
			priority: categoryPriority(el.Tags),
			distance: dist,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].distance < candidates[j].distance
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	pois := make([]POI, len(candidates))
	for i, c := range candidates {
		pois[i] = c.poi
	}
	return pois
}

// categoryPriority orders named attractions first, then historic sites,
// then parks, then religious sites. Lower is better.
func categoryPriority(tags map[string]string) int {
	switch {
	case tags["tourism"] != "":
		return 0
	case tags["historic"] != "":
		return 1
	case tags["leisure"] != "":
		return 2
	case tags["amenity"] == "place_of_worship":
		return 3
	default:
		return 4
	}
}

func placeType(tags map[string]string) string {
	for _, key := range []string{"tourism", "historic", "leisure", "amenity", "place"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return "attraction"
}

func description(tags map[string]string) *string {
	if d := tags["description"]; d != "" {
		return &d
	}
	return nil
}

const earthRadiusM = 6371000.0

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}
