package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"chatui/models"
)

const (
	chatPath        = "/chat"
	categorizedPath = "/models/categorized"

	defaultTimeout = 60 * time.Second
	maxBodyBytes   = 4 * 1024 * 1024 // 4MB
)

// Client talks to the backend over its two HTTP contracts
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a backend client. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Chat posts a message to the chat endpoint.
//
// A 2xx body carrying an error field is returned as a response with Error
// set; a non-2xx status is returned as *StatusError.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	status, body, err := c.execute(ctx, http.MethodPost, chatPath, req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	var resp models.ChatResponse
	decodeErr := json.Unmarshal(body, &resp)

	if status < 200 || status > 299 {
		statusErr := &StatusError{Code: status}
		if decodeErr == nil {
			statusErr.Message = resp.Error
		}
		log.Printf("[Backend] chat model=%q returned status %d", req.Model, status)
		return nil, statusErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", decodeErr)
	}
	if resp.Type == "" && resp.Error == "" {
		resp.Type = models.ResponseText
	}
	return &resp, nil
}

// Categorized fetches the model catalog
func (c *Client) Categorized(ctx context.Context) (*models.Catalog, error) {
	status, body, err := c.execute(ctx, http.MethodGet, categorizedPath, nil)
	if err != nil {
		return nil, fmt.Errorf("models request failed: %w", err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("failed to fetch models: %w", &StatusError{Code: status})
	}

	var cat models.Catalog
	if err := json.Unmarshal(body, &cat); err != nil {
		return nil, fmt.Errorf("failed to decode models: %w", err)
	}
	return &cat, nil
}

// GetInfo returns client information
func (c *Client) GetInfo() Info {
	return Info{
		BaseURL:        c.baseURL,
		TimeoutSeconds: int(c.client.Timeout / time.Second),
		MaxBodyBytes:   maxBodyBytes,
	}
}

// execute sends one request and returns the status and the raw body
func (c *Client) execute(ctx context.Context, method, path string, payload interface{}) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
