package backend

import (
	"context"
	"fmt"

	"chatui/models"
)

// Backend is the remote service the chat UI talks to
type Backend interface {
	// Send one user message with the selected model
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)

	// Fetch the categorized model catalog
	Categorized(ctx context.Context) (*models.Catalog, error)
}

// StatusError is returned when the backend answers with a non-2xx status.
// Message carries the body's error field when there was one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// Info describes the client for the health endpoint
type Info struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxBodyBytes   int64  `json:"max_body_bytes"`
}
