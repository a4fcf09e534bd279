package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/rajasatyajit/QuakeAlert/internal/errors"
)

// Translator converts text from the feed language into the display
// language. Implementations may fail; callers fall back to the source text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Client is a thin wrapper around a LibreTranslate-compatible REST API
type Client struct {
	baseURL    string
	sourceLang string
	targetLang string
	httpClient *http.Client
}

// NewClient constructs a client with sane defaults
func NewClient(baseURL, sourceLang, targetLang string, opts ...func(*Client)) *Client {
	c := &Client{
		baseURL:    baseURL,
		sourceLang: sourceLang,
		targetLang: targetLang,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient overrides the internal HTTP client
func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) {
		c.httpClient = hc
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate executes one translation request
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: c.sourceLang,
		Target: c.targetLang,
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("translate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Transient("translate", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("api error %d: %s", resp.StatusCode, string(data))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", apperrors.Transient("translate", err)
		}
		return "", apperrors.Permanent("translate", err)
	}

	var payload translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}

	return payload.TranslatedText, nil
}

// Noop passes text through unchanged; used when no translation endpoint is
// configured.
type Noop struct{}

// Translate returns the input untouched
func (Noop) Translate(ctx context.Context, text string) (string, error) {
	return text, nil
}
