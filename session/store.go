package session

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"chatui/models"

	"github.com/google/uuid"
)

// CookieName carries the session ID
const CookieName = "chatui_session"

const (
	DefaultTTL           = 4 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

func debugMode() bool {
	return os.Getenv("DEBUG_MODE") == "true"
}

// Store keeps sessions in memory and evicts idle ones
type Store struct {
	sessions sync.Map // id -> *Session
	count    atomic.Int64
	ttl      time.Duration

	mu       sync.RWMutex
	defaults models.Selection
}

// NewStore creates a store. Sessions idle longer than ttl are evicted.
func NewStore(ttl time.Duration, defaults models.Selection) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, defaults: defaults}
}

// SetDefaultSelection changes the selection given to new sessions
func (st *Store) SetDefaultSelection(sel models.Selection) {
	st.mu.Lock()
	st.defaults = sel
	st.mu.Unlock()
}

// Get returns an existing session
func (st *Store) Get(id string) (*Session, bool) {
	v, ok := st.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// GetOrCreate returns the session for id, creating it when unknown. An id that
// is not a UUID is replaced by a fresh one. The bool reports creation.
func (st *Store) GetOrCreate(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	if s, ok := st.Get(id); ok {
		s.Touch()
		return s, false
	}

	st.mu.RLock()
	sel := st.defaults
	st.mu.RUnlock()

	v, loaded := st.sessions.LoadOrStore(id, New(id, sel))
	if !loaded {
		st.count.Add(1)
		if debugMode() {
			log.Printf("[Session] Created session %s", id)
		}
	}
	return v.(*Session), !loaded
}

// FromRequest resolves the session of a request from its cookie
func (st *Store) FromRequest(r *http.Request) (*Session, bool) {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}
	return st.GetOrCreate(id)
}

// Cookie builds the session cookie
func (st *Store) Cookie(id string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Delete removes a session
func (st *Store) Delete(id string) {
	if _, ok := st.sessions.LoadAndDelete(id); ok {
		st.count.Add(-1)
	}
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	return int(st.count.Load())
}

// Sweep evicts sessions idle since before now-ttl and returns how many
func (st *Store) Sweep(now time.Time) int {
	var expired []string
	st.sessions.Range(func(key, value interface{}) bool {
		if now.Sub(value.(*Session).LastActivity()) > st.ttl {
			expired = append(expired, key.(string))
		}
		return true
	})

	for _, id := range expired {
		st.Delete(id)
		if debugMode() {
			log.Printf("[Session] Deleted expired session: %s", id)
		}
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := st.Sweep(now); n > 0 {
				log.Printf("[Session] Evicted %d idle sessions, %d live", n, st.Len())
			}
		}
	}
}
