package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DeliveryStatus classifies one transport send
type DeliveryStatus int

const (
	Delivered DeliveryStatus = iota
	RateLimited
	TransientFailure
	PermanentFailure
)

func (s DeliveryStatus) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case RateLimited:
		return "rate_limited"
	case TransientFailure:
		return "transient_failure"
	default:
		return "permanent_failure"
	}
}

// Result is the outcome of one send attempt
type Result struct {
	Status     DeliveryStatus
	RetryAfter time.Duration
	Err        error
}

// Transport delivers a formatted payload to the messaging service
type Transport interface {
	Send(ctx context.Context, payload string) Result
}

// TelegramClient implements Transport against the Telegram Bot API
type TelegramClient struct {
	apiBase string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegramClient creates a client posting to the given chat
func NewTelegramClient(apiBase, token, chatID string, timeout time.Duration) *TelegramClient {
	return &TelegramClient{
		apiBase: apiBase,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// Send posts one message. Classification: 429 is RateLimited carrying the
// server's retry hint, 5xx and network errors are transient, anything else
// the API rejects is permanent.
func (c *TelegramClient) Send(ctx context.Context, payload string) Result {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  payload,
		ParseMode:             "MarkdownV2",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return Result{Status: PermanentFailure, Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Status: PermanentFailure, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Status: TransientFailure, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{Status: TransientFailure, Err: err}
	}

	var apiResp sendMessageResponse
	_ = json.Unmarshal(data, &apiResp)

	switch {
	case resp.StatusCode == http.StatusOK && apiResp.OK:
		return Result{Status: Delivered}
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{
			Status:     RateLimited,
			RetryAfter: time.Duration(apiResp.Parameters.RetryAfter) * time.Second,
			Err:        fmt.Errorf("telegram: %s", apiResp.Description),
		}
	case resp.StatusCode >= 500:
		return Result{Status: TransientFailure, Err: fmt.Errorf("telegram: HTTP %d: %s", resp.StatusCode, apiResp.Description)}
	default:
		return Result{Status: PermanentFailure, Err: fmt.Errorf("telegram: HTTP %d: %s", resp.StatusCode, apiResp.Description)}
	}
}
