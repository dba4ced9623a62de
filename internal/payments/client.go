package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"product-studio-backend/internal/workflow"
)

var _ workflow.PaymentGateway = (*Client)(nil)

// Client charges through the payment provider's REST API. Charges are never
// retried here; a failed charge surfaces to the caller as-is.
type Client struct {
	baseURL    string
	apiKey     string
	currency   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type ChargeRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type ChargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(baseURL, apiKey string, requestsPerSecond float64) *Client {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		currency: "usd",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Charge creates one charge and returns the provider's reference for it. The
// provider answers a repeated idempotency key with the first charge.
func (c *Client) Charge(ctx context.Context, amountCents int64, description, idempotencyKey string) (string, error) {
	if amountCents <= 0 {
		return "", fmt.Errorf("amount must be positive, got %d", amountCents)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	jsonData, err := json.Marshal(ChargeRequest{
		Amount:      amountCents,
		Currency:    c.currency,
		Description: description,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("charge declined (%s): %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return "", fmt.Errorf("charge failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result ChargeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.ID == "" {
		return "", fmt.Errorf("charge id is empty in response, body: %s", string(body))
	}
	if result.Status != "" && result.Status != "succeeded" {
		return "", fmt.Errorf("charge %s not successful: %s", result.ID, result.Status)
	}

	return result.ID, nil
}
