// Package session keeps the UI state of each visitor: the transcript, the
// selected model and the popover.
package session

import (
	"sync"
	"time"

	"chatui/chat"
	"chatui/models"
	"chatui/popover"
)

// Session is the UI state object of one visitor
type Session struct {
	ID           string
	Conversation *chat.Conversation
	CreatedAt    time.Time

	mu           sync.Mutex
	selection    models.Selection
	popover      *popover.State
	lastActivity time.Time
}

// Snapshot is a consistent copy of a session taken under its lock
type Snapshot struct {
	ID           string
	Selection    models.Selection
	Popover      popover.State
	Messages     []chat.Message
	FirstMessage bool
}

// New creates a session with an empty conversation
func New(id string, sel models.Selection) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Conversation: chat.NewConversation(),
		CreatedAt:    now,
		selection:    sel,
		popover:      popover.NewState(),
		lastActivity: now,
	}
}

// Selection returns the selected model
func (s *Session) Selection() models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Update runs fn with the selection and popover state under the session lock.
// fn must not block.
func (s *Session) Update(fn func(sel *models.Selection, p *popover.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
	return fn(&s.selection, s.popover)
}

// Snapshot copies the session for rendering
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		ID:        s.ID,
		Selection: s.selection,
		Popover:   s.popover.Snapshot(),
	}
	s.mu.Unlock()

	snap.Messages = s.Conversation.Messages()
	snap.FirstMessage = s.Conversation.FirstMessage()
	return snap
}

// Touch records activity so the janitor keeps the session
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity returns the time of the last request on this session
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Reset starts a new chat. The selection and popover are kept.
func (s *Session) Reset() {
	s.Conversation.Reset()
	s.Touch()
}
