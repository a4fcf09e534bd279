package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	apperrors "github.com/rajasatyajit/QuakeAlert/internal/errors"
)

// Place is the resolved location for a coordinate pair
type Place struct {
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
	Locality    string `json:"locality"`
}

// Resolver maps coordinates to a place
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) (Place, error)
}

// Client is a reverse-geocoding HTTP client with an in-memory cache.
// Coordinates are cached at two-decimal precision (roughly a kilometre),
// which is plenty for country-level decisions and spares the upstream API.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	cache map[string]Place
}

// NewClient creates a geocoding client against the given endpoint
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cache:   make(map[string]Place),
	}
}

// Resolve looks up the place for the coordinates
func (c *Client) Resolve(ctx context.Context, lat, lon float64) (Place, error) {
	key := cacheKey(lat, lon)

	c.mu.RLock()
	place, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return place, nil
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("localityLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Place{}, apperrors.Transient("geocode", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d", resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return Place{}, apperrors.Transient("geocode", err)
		}
		return Place{}, apperrors.Permanent("geocode", err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Place{}, apperrors.Transient("geocode", err)
	}

	if err := json.Unmarshal(body, &place); err != nil {
		return Place{}, fmt.Errorf("decode geocode response: %w", err)
	}

	c.mu.Lock()
	c.cache[key] = place
	c.mu.Unlock()

	return place, nil
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}
