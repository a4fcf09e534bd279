package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/rajasatyajit/QuakeAlert/internal/errors"
)

// Fetcher retrieves one raw feed payload per call
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPFetcher implements Fetcher over plain HTTP
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher creates a fetcher for the given feed URL
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch performs one network read of the feed
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "QuakeAlert/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.Transient("fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, apperrors.Transient("fetch", err)
		}
		return nil, apperrors.Permanent("fetch", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transient("fetch", err)
	}

	return body, nil
}
