// Package chat holds the transcript of a conversation and the flow that sends
// a user message to the backend and records the reply.
package chat

import (
	"sync"
	"time"

	"chatui/models"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one transcript entry.
//
// User messages carry Text and are always rendered escaped. Bot messages carry
// Response. A Pending bot message is the loading placeholder of a submission
// still in flight.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Response  *models.ChatResponse
	Pending   bool
	CreatedAt time.Time
}

// IsError reports whether a bot message was synthesized from a failure
func (m Message) IsError() bool {
	return m.Role == RoleBot && m.Response != nil && m.Response.Error != ""
}

// Conversation is the ordered transcript of the current session
type Conversation struct {
	mu           sync.Mutex
	messages     []Message
	firstMessage bool
}

// NewConversation creates an empty conversation showing the welcome banner
func NewConversation() *Conversation {
	return &Conversation{firstMessage: true}
}

// Messages returns a copy of the transcript
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Len returns the number of transcript entries, placeholders included
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// FirstMessage reports whether nothing has been sent since the last reset.
// The welcome banner is shown while it is true.
func (c *Conversation) FirstMessage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstMessage
}

// Pending returns the number of submissions still waiting for a reply
func (c *Conversation) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.messages {
		if m.Pending {
			n++
		}
	}
	return n
}

// Reset empties the transcript and re-arms the welcome banner
func (c *Conversation) Reset() {
	c.mu.Lock()
	c.messages = nil
	c.firstMessage = true
	c.mu.Unlock()
}

// begin appends the user message and the loading placeholder for a submission
// and returns the placeholder ID.
func (c *Conversation) begin(text string) string {
	now := time.Now()
	placeholder := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.firstMessage = false
	c.messages = append(c.messages,
		Message{ID: uuid.NewString(), Role: RoleUser, Text: text, CreatedAt: now},
		Message{ID: placeholder, Role: RoleBot, Pending: true, CreatedAt: now},
	)
	return placeholder
}

// settle replaces a placeholder with the reply. It returns false when the
// placeholder is gone because the conversation was reset meanwhile.
func (c *Conversation) settle(placeholder string, resp *models.ChatResponse) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == placeholder {
			c.messages[i].Pending = false
			c.messages[i].Response = resp
			c.messages[i].CreatedAt = time.Now()
			return c.messages[i], true
		}
	}
	return Message{}, false
}
