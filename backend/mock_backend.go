package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"chatui/models"
)

// MockCatalog is the catalog served by the mock backend by default
var MockCatalog = models.Catalog{
	LLM: []models.Descriptor{
		{ModelName: "Gemini 2.5 Flash", Provider: "google", ProviderName: "Google", APIName: "gemini-2.5-flash-preview-05-20", DisplayNameMain: "Gemini", DisplayNameSub: "2.5 Flash", Capabilities: map[string]bool{"vision": true, "web": true}},
		{ModelName: "Claude Sonnet 4", Provider: "anthropic", ProviderName: "Anthropic", APIName: "claude-sonnet-4", DisplayNameMain: "Claude", DisplayNameSub: "Sonnet 4", Premium: true, PremiumIcon: "crown", Capabilities: map[string]bool{"reasoning": true, "coding": true}},
		{ModelName: "gpt-4o", Provider: "openai", ProviderName: "OpenAI", APIName: "gpt-4o", DisplayNameMain: "GPT-4o"},
		{ModelName: "Mistral Small", Provider: "mistral", ProviderName: "Mistral", APIName: "mistral-small", DisplayNameMain: "Mistral", DisplayNameSub: "Small"},
		{ModelName: "Command R", Provider: "cohere", ProviderName: "Cohere", APIName: "command-r", DisplayNameMain: "Command", DisplayNameSub: "R"},
	},
	Image: []models.Descriptor{
		{ModelName: "Imagen 3", Provider: "google", ProviderName: "Google", APIName: "imagen-3", DisplayNameMain: "Imagen"},
		{ModelName: "DALL-E 3", Provider: "openai", ProviderName: "OpenAI", APIName: "dall-e-3", DisplayNameMain: "DALL-E"},
	},
	Video: []models.Descriptor{
		{ModelName: "Veo 2", Provider: "google", ProviderName: "Google", APIName: "veo-2", DisplayNameMain: "Veo"},
	},
}

// ChatFunc scripts the mock chat endpoint: it returns the status code and the
// JSON body to send back.
type ChatFunc func(req models.ChatRequest) (int, interface{})

// MockBackend is an httptest server implementing the backend contracts
type MockBackend struct {
	*httptest.Server

	mu            sync.Mutex
	chat          ChatFunc
	catalog       models.Catalog
	catalogStatus int
	requests      []models.ChatRequest

	chatCalls    atomic.Int32
	catalogCalls atomic.Int32
}

// NewMockBackend creates a test backend. Chat echoes the message as a text
// response until SetChat replaces it.
func NewMockBackend(t *testing.T) *MockBackend {
	t.Helper()

	m := &MockBackend{
		catalog:       MockCatalog,
		catalogStatus: http.StatusOK,
		chat: func(req models.ChatRequest) (int, interface{}) {
			return http.StatusOK, models.ChatResponse{Type: models.ResponseText, Response: "echo: " + req.Message}
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(chatPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		m.chatCalls.Add(1)

		var req models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
			return
		}

		m.mu.Lock()
		m.requests = append(m.requests, req)
		fn := m.chat
		m.mu.Unlock()

		status, body := fn(req)
		writeJSON(w, status, body)
	})
	mux.HandleFunc(categorizedPath, func(w http.ResponseWriter, r *http.Request) {
		m.catalogCalls.Add(1)

		m.mu.Lock()
		status, cat := m.catalogStatus, m.catalog
		m.mu.Unlock()

		if status != http.StatusOK {
			writeJSON(w, status, map[string]string{"error": "database unavailable"})
			return
		}
		writeJSON(w, status, cat)
	})

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

// SetChat replaces the chat endpoint behavior
func (m *MockBackend) SetChat(fn ChatFunc) {
	m.mu.Lock()
	m.chat = fn
	m.mu.Unlock()
}

// SetCatalog replaces the served catalog
func (m *MockBackend) SetCatalog(cat models.Catalog) {
	m.mu.Lock()
	m.catalog = cat
	m.mu.Unlock()
}

// SetCatalogStatus makes the catalog endpoint fail with the given status
func (m *MockBackend) SetCatalogStatus(status int) {
	m.mu.Lock()
	m.catalogStatus = status
	m.mu.Unlock()
}

// Requests returns the chat requests received so far
func (m *MockBackend) Requests() []models.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChatRequest(nil), m.requests...)
}

// ChatCalls returns how many chat requests were received
func (m *MockBackend) ChatCalls() int { return int(m.chatCalls.Load()) }

// CatalogCalls returns how many catalog requests were received
func (m *MockBackend) CatalogCalls() int { return int(m.catalogCalls.Load()) }

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
