package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an HTTP implementation of Gateway using the provider's
// token-authenticated REST API.
type Client struct {
	baseURL     string
	apiToken    string
	callbackURL string
	httpClient  *http.Client
	maxAttempts int
	backoff     time.Duration
}

// ClientConfig configures the gateway HTTP client.
type ClientConfig struct {
	BaseURL     string
	APIToken    string
	CallbackURL string
	Timeout     time.Duration
	MaxAttempts int           // attempts per call, including the first
	Backoff     time.Duration // initial backoff, doubled per retry
}

// NewClient creates a gateway client with an explicit request timeout
// and a capped retry around each call.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		apiToken:    cfg.APIToken,
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
	}
}

type pushRequestBody struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PhoneNumber string  `json:"phone_number"`
	Description string  `json:"description"`
	Reference   string  `json:"external_reference"`
	CallbackURL string  `json:"callback_url"`
}

type pushResponseBody struct {
	TrackingID string `json:"tracking_id"`
	Message    string `json:"message"`
}

type statusResponseBody struct {
	TrackingID  string `json:"tracking_id"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// RequestToPay submits a push-to-phone prompt to the provider.
func (c *Client) RequestToPay(ctx context.Context, req PushRequest) (*PushResponse, error) {
	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = c.callbackURL
	}

	body := pushRequestBody{
		Amount:      req.Amount,
		Currency:    req.Currency,
		PhoneNumber: req.PhoneNumber,
		Description: req.Description,
		Reference:   req.Reference,
		CallbackURL: callbackURL,
	}

	var resp pushResponseBody
	if err := c.do(ctx, http.MethodPost, "/v1/requesttopay", body, &resp); err != nil {
		return nil, err
	}

	if resp.TrackingID == "" {
		return nil, fmt.Errorf("gateway returned no tracking id")
	}

	return &PushResponse{TrackingID: resp.TrackingID, Message: resp.Message}, nil
}

// TransactionStatus queries the current state of a push request.
func (c *Client) TransactionStatus(ctx context.Context, trackingID string) (*StatusResponse, error) {
	var resp statusResponseBody
	path := "/v1/transactions/" + trackingID
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	state, err := parseState(resp.Status)
	if err != nil {
		return nil, err
	}

	return &StatusResponse{
		TrackingID:  trackingID,
		State:       state,
		Description: resp.Description,
	}, nil
}

// do performs one API call with bounded retries. Only transport
// failures and 5xx responses are retried; 4xx responses are final.
func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal gateway request: %w", err)
		}
	}

	var lastErr error
	backoff := c.backoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		retryable, err := c.doOnce(ctx, method, path, payload, respBody)
		if err == nil {
			return nil
		}

		lastErr = err
		if !retryable {
			return err
		}
	}

	return fmt.Errorf("gateway unavailable after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, respBody any) (retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return false, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return false, fmt.Errorf("decode gateway response: %w", err)
		}
	}

	return false, nil
}

// parseState maps the provider's status strings onto our states.
// Providers vary in casing and vocabulary for success/failure.
func parseState(raw string) (TransactionState, error) {
	switch raw {
	case "pending", "PENDING", "processing", "PROCESSING":
		return StatePending, nil
	case "completed", "COMPLETED", "successful", "SUCCESSFUL":
		return StateCompleted, nil
	case "failed", "FAILED", "rejected", "REJECTED", "expired", "EXPIRED":
		return StateFailed, nil
	}
	return "", fmt.Errorf("unknown gateway status %q", raw)
}
