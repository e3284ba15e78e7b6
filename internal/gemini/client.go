// Package gemini provides a small client for the Gemini generateContent
// REST endpoint with structured JSON output.
//
// The client retries rate limits and server errors with exponential backoff
// and reports failures through typed errors.
//
// # Usage
//
//	client := gemini.NewClient(gemini.Config{
//	    APIKey: key,
//	    Model:  "gemini-2.5-flash",
//	})
//
//	text, err := client.GenerateJSON(ctx, prompt, schema)
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the public Generative Language API base URL.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// Config holds configuration for the Gemini client.
type Config struct {
	// APIKey is sent in the x-goog-api-key header. Required.
	APIKey string

	// Model is the model name, e.g. "gemini-2.5-flash".
	Model string

	// Endpoint is the API base URL. Defaults to DefaultEndpoint.
	Endpoint string

	// Temperature is the sampling temperature. Zero leaves the model default.
	Temperature float64

	// MaxRetries is the number of retries for retryable errors. Zero disables retries.
	MaxRetries int

	// BaseRetryDelay is the initial delay before the first retry.
	// Defaults to 2 seconds if zero.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff delay.
	// Defaults to 16 seconds if zero.
	MaxRetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Timeouts come from the request context.
	HTTPClient *http.Client
}

// Client is a Gemini API client.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a new Gemini client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = 2 * time.Second
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = 16 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{config: cfg, http: httpClient}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// GenerateJSON sends a prompt and returns the JSON text of the first
// candidate, constrained by the response schema.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return "", ErrNoAPIKey
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}
	if c.config.Temperature > 0 {
		t := c.config.Temperature
		body.GenerationConfig.Temperature = &t
	}

	resp, err := c.doRequestWithRetry(ctx, body)
	if err != nil {
		return "", err
	}
	return resp.text()
}

// --- Core request methods ---

// doRequest sends a single generateContent request and decodes the response.
func (c *Client) doRequest(ctx context.Context, body generateRequest) (*generateResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.config.Endpoint, "/"), c.config.Model)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newHTTPError(resp.StatusCode, respBody)
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("gemini: invalid response JSON: %w", err)
	}
	return &out, nil
}

// doRequestWithRetry sends a request with automatic retry on retryable errors.
func (c *Client) doRequestWithRetry(ctx context.Context, body generateRequest) (*generateResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.doRequest(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if httpErr, ok := err.(*HTTPError); ok && httpErr.IsRetryable() {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("gemini: max retries exceeded: %w", lastErr)
}

// retryDelay calculates the backoff delay for a given attempt number.
func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.config.BaseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > c.config.MaxRetryDelay {
		delay = c.config.MaxRetryDelay
	}
	return delay
}
