package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"chatui/models"

	"github.com/google/uuid"
)

const (
	// AppErrorPrefix marks an error reported by the backend in a 2xx body
	AppErrorPrefix = "❌ "

	// RequestErrorPrefix marks a transport failure or a non-2xx status
	RequestErrorPrefix = "An error occurred: "
)

// ErrEmptyMessage is returned when the trimmed input is empty. Nothing is
// added to the transcript and the backend is not called.
var ErrEmptyMessage = errors.New("empty message")

// Sender sends one chat request to the backend
type Sender interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// Submit runs the send flow for one user message.
//
// The user message and a loading placeholder are appended before the backend
// is called. When the call returns, the placeholder is replaced by the reply or
// by an error message, so the transcript keeps submission order even when
// overlapping submissions complete out of order. Failures are not retried.
//
// The returned message is the settled bot message.
func (c *Conversation) Submit(ctx context.Context, sender Sender, sel models.Selection, input string) (Message, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	mediaType := sel.MediaType
	if mediaType == "" {
		mediaType = models.MediaLLM
	}

	requestID := uuid.NewString()[:8]
	placeholder := c.begin(text)
	start := time.Now()

	resp, err := sender.Chat(ctx, models.ChatRequest{
		Message:   text,
		Model:     sel.ModelName,
		MediaType: mediaType,
	})

	reply := replyFor(resp, err)
	if err != nil {
		log.Printf("[Chat] %s model=%q failed after %s: %v", requestID, sel.ModelName, time.Since(start).Round(time.Millisecond), err)
	} else {
		log.Printf("[Chat] %s model=%q type=%s in %s", requestID, sel.ModelName, reply.Type, time.Since(start).Round(time.Millisecond))
	}

	msg, ok := c.settle(placeholder, reply)
	if !ok {
		log.Printf("[Chat] %s reply dropped, conversation was reset", requestID)
		return Message{Role: RoleBot, Response: reply}, nil
	}
	return msg, nil
}

// SubmitSample sends a suggested question as if it had been typed
func (c *Conversation) SubmitSample(ctx context.Context, sender Sender, sel models.Selection, question string) (Message, error) {
	return c.Submit(ctx, sender, sel, question)
}

// replyFor turns the outcome of a backend call into the bot response to show
func replyFor(resp *models.ChatResponse, err error) *models.ChatResponse {
	if err != nil {
		return &models.ChatResponse{
			Type:     models.ResponseText,
			Response: RequestErrorPrefix + err.Error(),
			Error:    err.Error(),
		}
	}
	if resp == nil {
		return &models.ChatResponse{
			Type:     models.ResponseText,
			Response: RequestErrorPrefix + "empty response",
			Error:    "empty response",
		}
	}
	if resp.Error != "" {
		return &models.ChatResponse{
			Type:     models.ResponseText,
			Response: AppErrorPrefix + resp.Error,
			Error:    resp.Error,
		}
	}
	return resp
}
