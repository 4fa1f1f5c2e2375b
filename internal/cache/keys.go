package cache

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

const (
	GeocodeTTL = 24 * time.Hour
	WeatherTTL = 1 * time.Hour
	PlacesTTL  = 1 * time.Hour
)

// GeocodeKey generates the cache key for a resolved location
func GeocodeKey(name string) string {
	hash := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(name))))
	return fmt.Sprintf("cache:v1:geocode:%x", hash)
}

// WeatherKey generates the cache key for a weather snapshot
func WeatherKey(lat, lon float64) string {
	hash := sha1.Sum([]byte(fmt.Sprintf("weather:%.4f:%.4f", lat, lon)))
	return fmt.Sprintf("cache:v1:weather:%x", hash)
}

// PlacesKey generates the cache key for a points-of-interest lookup
func PlacesKey(lat, lon float64, limit int) string {
	hash := sha1.Sum([]byte(fmt.Sprintf("places:%.4f:%.4f:%d", lat, lon, limit)))
	return fmt.Sprintf("cache:v1:places:%x", hash)
}

// GetTTL returns the TTL to use for a given key
func GetTTL(key string) time.Duration {
	switch {
	case strings.Contains(key, "cache:v1:geocode:"):
		return GeocodeTTL
	case strings.Contains(key, "cache:v1:weather:"):
		return WeatherTTL
	case strings.Contains(key, "cache:v1:places:"):
		return PlacesTTL
	default:
		return 5 * time.Minute
	}
}
