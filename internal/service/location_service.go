package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/pkg/config"
)

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationService resolves free-text locations to coordinates through
// Nominatim and computes great-circle distances. Geocoding is strictly
// best-effort: any failure yields nil coordinates, never an error.
type LocationService struct {
	client *http.Client
	cache  cacheStore
	logger *zap.Logger
	cfg    config.GeocodingConfig
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// NewLocationService constructs the location service. A nil cache disables
// geocode caching.
func NewLocationService(cache cacheStore, logger *zap.Logger, cfg config.GeocodingConfig) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: logger,
		cfg:    cfg,
	}
}

// Geocode resolves a location string to coordinates. Returns nil when the
// location cannot be resolved; callers treat missing coordinates as "no
// distance information".
func (s *LocationService) Geocode(ctx context.Context, location string) *Coordinates {
	if location == "" {
		return nil
	}

	cacheKey := "geocode:" + location
	if s.cache != nil {
		var cached Coordinates
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached
		}
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", s.cfg.BaseURL, url.QueryEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		s.logger.Warn("failed to build geocode request", zap.String("location", location), zap.Error(err))
		return nil
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("geocode request failed", zap.String("location", location), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("geocode request rejected", zap.String("location", location), zap.Int("status", resp.StatusCode))
		return nil
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		s.logger.Warn("failed to decode geocode response", zap.String("location", location), zap.Error(err))
		return nil
	}
	if len(results) == 0 {
		return nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil
	}

	coords := &Coordinates{Latitude: lat, Longitude: lon}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, coords, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache geocode result", zap.String("location", location), zap.Error(err))
		}
	}
	return coords
}

// Distance returns the great-circle distance between two points in
// kilometres.
func Distance(a, b Coordinates) float64 {
	const earthRadiusKm = 6371.0

	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
