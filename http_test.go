package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"chatui/backend"
	"chatui/config"
	"chatui/models"
	"chatui/prefs"
	"chatui/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t      *testing.T
	mock   *backend.MockBackend
	srv    *Server
	ts     *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *harness {
	t.Helper()
	mock := backend.NewMockBackend(t)

	cfg := config.Default()
	cfg.Backend.BaseURL = mock.URL
	cfg.Prefs.Driver = "memory"
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := NewServer(cfg, backend.NewClient(cfg.Backend.BaseURL, 5*time.Second), prefs.NewMemoryStore())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, mock: mock, srv: srv, ts: ts, client: &http.Client{Jar: jar}}
}

// visitor returns a harness for a second browser with its own cookie jar
func (h *harness) visitor() *harness {
	h.t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(h.t, err)
	other := *h
	other.client = &http.Client{Jar: jar}
	return &other
}

func (h *harness) do(method, path string, form url.Values, headers map[string]string) (int, string) {
	h.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, h.ts.URL+path, body)
	require.NoError(h.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "text/html")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, string(data)
}

func (h *harness) page() string {
	status, body := h.do(http.MethodGet, "/", nil, nil)
	require.Equal(h.t, http.StatusOK, status)
	return body
}

// post submits a browser form and returns the page it redirects to
func (h *harness) post(path string, form url.Values) (int, string) {
	if form == nil {
		form = url.Values{}
	}
	return h.do(http.MethodPost, path, form, nil)
}

func (h *harness) ajax(path string, form url.Values) (int, string) {
	return h.do(http.MethodPost, path, form, map[string]string{"X-Requested-With": "XMLHttpRequest"})
}

func TestPageSetsSessionCookie(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Contains(t, rec.Body.String(), `id="welcomeContainer"`)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestUnknownPathIsNotFound(t *testing.T) {
	h := newHarness(t, nil)
	status, _ := h.do(http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSendAJAXReturnsFragment(t *testing.T) {
	h := newHarness(t, nil)

	status, body := h.ajax("/send", url.Values{"q": {"hello"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `class="message bot"`)
	assert.Contains(t, body, "echo: hello")
	assert.NotContains(t, body, "<html")

	page := h.page()
	assert.NotContains(t, page, `id="welcomeContainer"`)
	assert.Contains(t, page, "echo: hello")
	assert.Less(t, strings.Index(page, ">hello<"), strings.Index(page, "echo: hello"))

	reqs := h.mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, models.ChatRequest{Message: "hello", Model: "Gemini 2.5 Flash", MediaType: models.MediaLLM}, reqs[0])
}

func TestSendEmptyMessageIsIgnored(t *testing.T) {
	h := newHarness(t, nil)

	status, _ := h.ajax("/send", url.Values{"q": {"   "}})
	assert.Equal(t, http.StatusNoContent, status)

	status, page := h.post("/send", url.Values{"q": {""}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, `id="welcomeContainer"`)
	assert.Equal(t, 0, h.mock.ChatCalls())
}

func TestSendFormRedirectsToPage(t *testing.T) {
	h := newHarness(t, nil)

	status, page := h.post("/send", url.Values{"q": {"**bold** move"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, "<strong>bold</strong>")
	assert.Contains(t, page, `data-theme="dark"`)
}

func TestSendPlainTextForCLI(t *testing.T) {
	h := newHarness(t, nil)

	form := url.Values{"q": {"hi"}}
	req, err := http.NewRequest(http.MethodPost, h.ts.URL+"/send", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "curl/8.0")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "echo: hi\n", string(data))
}

func TestSendErrors(t *testing.T) {
	h := newHarness(t, nil)

	h.mock.SetChat(func(models.ChatRequest) (int, interface{}) {
		return http.StatusBadGateway, map[string]string{"error": "model overloaded"}
	})
	_, body := h.ajax("/send", url.Values{"q": {"one"}})
	assert.Contains(t, body, "An error occurred: model overloaded")
	assert.Contains(t, body, "message bot error")

	h.mock.SetChat(func(models.ChatRequest) (int, interface{}) {
		return http.StatusOK, map[string]string{"error": "quota exceeded"}
	})
	_, body = h.ajax("/send", url.Values{"q": {"two"}})
	assert.Contains(t, body, "❌ quota exceeded")

	h.mock.Close()
	_, body = h.ajax("/send", url.Values{"q": {"three"}})
	assert.Contains(t, body, "An error occurred: ")

	page := h.page()
	assert.Equal(t, 3, strings.Count(page, "message bot error"))
}

func TestSendMediaResponses(t *testing.T) {
	h := newHarness(t, nil)
	h.mock.SetChat(func(req models.ChatRequest) (int, interface{}) {
		return http.StatusOK, models.ChatResponse{Type: models.ResponseImage, Images: []string{"https://cdn.example/cat.png"}}
	})

	_, body := h.ajax("/send", url.Values{"q": {"draw a cat"}})
	assert.Contains(t, body, `<img src="https://cdn.example/cat.png" alt="Generated image" class="generated-image">`)
}

func TestSampleQuestion(t *testing.T) {
	h := newHarness(t, nil)

	status, page := h.post("/sample", url.Values{"question": {"How does AI work?"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, "echo: How does AI work?")
	assert.Equal(t, "How does AI work?", h.mock.Requests()[0].Message)
}

func TestNewChatResetsTranscript(t *testing.T) {
	h := newHarness(t, nil)
	h.ajax("/send", url.Values{"q": {"hello"}})

	_, page := h.post("/new", nil)
	assert.Contains(t, page, `id="welcomeContainer"`)
	assert.NotContains(t, page, "echo: hello")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness(t, nil)
	for _, path := range []string{"/send", "/sample", "/new", "/theme", "/popover/toggle", "/popover/select"} {
		status, _ := h.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, status, path)
	}
}

func TestPopoverLoadsCatalogOnce(t *testing.T) {
	h := newHarness(t, nil)
	assert.NotContains(t, h.page(), `id="modelDropdown"`)
	assert.Equal(t, 0, h.mock.CatalogCalls())

	_, page := h.post("/popover/toggle", nil)
	assert.Contains(t, page, `id="modelDropdown"`)
	assert.Contains(t, page, "Favorites")
	assert.Equal(t, 1, strings.Count(page, "model-card-popover active"))

	h.post("/popover/toggle", nil)
	_, page = h.post("/popover/toggle", nil)
	assert.Contains(t, page, `id="modelDropdown"`)
	assert.Equal(t, 1, h.mock.CatalogCalls())
}

func TestPopoverLoadFailureRetries(t *testing.T) {
	h := newHarness(t, nil)
	h.mock.SetCatalogStatus(http.StatusInternalServerError)

	_, page := h.post("/popover/toggle", nil)
	assert.Contains(t, page, "Could not load models.")

	h.mock.SetCatalogStatus(http.StatusOK)
	h.post("/popover/toggle", nil)
	_, page = h.post("/popover/toggle", nil)
	assert.NotContains(t, page, "Could not load models.")
	assert.Contains(t, page, "Favorites")
	assert.Equal(t, 2, h.mock.CatalogCalls())
}

func TestPopoverClearsLoadErrorOnceAnotherSessionLoaded(t *testing.T) {
	a := newHarness(t, nil)
	a.mock.SetCatalogStatus(http.StatusInternalServerError)
	_, page := a.post("/popover/toggle", nil)
	assert.Contains(t, page, "Could not load models.")
	a.post("/popover/toggle", nil)

	a.mock.SetCatalogStatus(http.StatusOK)
	b := a.visitor()
	_, page = b.post("/popover/toggle", nil)
	assert.Contains(t, page, "Favorites")

	_, page = a.post("/popover/toggle", nil)
	assert.NotContains(t, page, "Could not load models.")
	assert.Contains(t, page, "Favorites")
	assert.Equal(t, 2, a.mock.CatalogCalls())
}

func TestSelectionFollowsLoadedCatalog(t *testing.T) {
	h := newHarness(t, nil)
	h.mock.SetCatalog(models.Catalog{LLM: []models.Descriptor{
		{ModelName: "gpt-4o", Provider: "openai", ProviderName: "OpenAI", APIName: "gpt-4o", DisplayNameMain: "GPT-4o"},
	}})

	_, page := h.post("/popover/toggle", nil)
	assert.Contains(t, page, `<span id="selectedModelName">gpt-4o</span>`)

	h.ajax("/send", url.Values{"q": {"hi"}})
	reqs := h.mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "gpt-4o", reqs[0].Model)

	// A session that never opened the popover sends with the loaded catalog too
	other := h.visitor()
	other.ajax("/send", url.Values{"q": {"hello"}})
	reqs = h.mock.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "gpt-4o", reqs[1].Model)
}

func TestPopoverSelectModel(t *testing.T) {
	h := newHarness(t, nil)
	h.post("/popover/toggle", nil)

	_, page := h.post("/popover/select", url.Values{"type": {"image"}, "model": {"DALL-E 3"}})
	assert.NotContains(t, page, `id="modelDropdown"`)
	assert.Contains(t, page, `<span id="selectedModelName">DALL-E 3</span>`)

	h.ajax("/send", url.Values{"q": {"a cat"}})
	reqs := h.mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "DALL-E 3", reqs[0].Model)
	assert.Equal(t, models.MediaImage, reqs[0].MediaType)

	status, _ := h.post("/popover/select", url.Values{"type": {"image"}, "model": {"Nope"}})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = h.post("/popover/select", url.Values{"type": {"hologram"}, "model": {"DALL-E 3"}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPopoverSwitchMediaTypeSelectsFirst(t *testing.T) {
	h := newHarness(t, nil)
	h.post("/popover/toggle", nil)

	_, page := h.post("/popover/media", url.Values{"type": {"video"}})
	assert.Contains(t, page, `<span id="selectedModelName">Veo 2</span>`)
	assert.Contains(t, page, `class="media-section active" id="video-section"`)

	h.ajax("/send", url.Values{"q": {"waves"}})
	assert.Equal(t, models.MediaVideo, h.mock.Requests()[0].MediaType)
}

func TestPopoverExpandAndSections(t *testing.T) {
	h := newHarness(t, nil)
	h.post("/popover/toggle", nil)

	_, page := h.post("/popover/expand", nil)
	assert.Contains(t, page, "All Providers")
	assert.Contains(t, page, "Show less")
	assert.NotContains(t, page, "provider-section-header open")

	_, page = h.post("/popover/section", url.Values{"provider": {"Cohere"}})
	assert.Contains(t, page, `class="provider-section-header open" type="submit" name="provider" value="Cohere"`)

	// Still open after another render
	assert.Contains(t, h.page(), `class="provider-section-header open" type="submit" name="provider" value="Cohere"`)

	status, _ := h.post("/popover/section", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPopoverFilter(t *testing.T) {
	h := newHarness(t, nil)
	h.post("/popover/toggle", nil)

	status, page := h.do(http.MethodGet, "/?filter=dall", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, `value="dall"`)
	assert.Contains(t, page, `class="hidden"`)
}

func TestPopoverFilterLoadsCatalog(t *testing.T) {
	h := newHarness(t, nil)

	status, page := h.do(http.MethodGet, "/?filter=dall", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, `id="modelDropdown"`)
	assert.Contains(t, page, "DALL-E 3")
	assert.Equal(t, 1, h.mock.CatalogCalls())
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t, nil)

	_, page := h.post("/theme", nil)
	assert.Contains(t, page, `data-theme="light"`)

	status, body := h.ajax("/theme", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"theme":"dark"}`, body)
	assert.Contains(t, h.page(), `data-theme="dark"`)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	})

	for i := 0; i < 2; i++ {
		status, _ := h.ajax("/send", url.Values{"q": {"hi"}})
		assert.Equal(t, http.StatusOK, status)
	}
	status, _ := h.ajax("/send", url.Values{"q": {"hi"}})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, 2, h.mock.ChatCalls())
}

func TestApplyConfigSwapsSampleQuestions(t *testing.T) {
	h := newHarness(t, nil)
	cfg := config.Default()
	cfg.SampleQuestions = []string{"What is new?"}
	h.srv.ApplyConfig(cfg)

	page := h.page()
	assert.Contains(t, page, `value="What is new?"`)
	assert.NotContains(t, page, "Are black holes real?")
}

func TestApplyConfigRefetchesCatalog(t *testing.T) {
	h := newHarness(t, nil)
	h.post("/popover/toggle", nil)
	require.NotNil(t, h.srv.catalog.Peek())

	h.srv.ApplyConfig(config.Default())
	assert.Nil(t, h.srv.catalog.Peek())

	h.post("/popover/toggle", nil)
	h.post("/popover/toggle", nil)
	assert.Equal(t, 2, h.mock.CatalogCalls())
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	h.page()

	status, body := h.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, float64(1), health["sessions"])

	be := health["backend"].(map[string]interface{})
	assert.Equal(t, h.mock.URL, be["base_url"])

	cat := health["catalog"].(map[string]interface{})
	assert.Equal(t, false, cat["loaded"])
	assert.NotContains(t, health, "backend_health")
}

func TestHealthReportsDegradedBackend(t *testing.T) {
	h := newHarness(t, nil)
	h.mock.SetCatalogStatus(http.StatusServiceUnavailable)
	h.srv.health = backend.NewHealthChecker(backend.NewClient(h.mock.URL, time.Second), time.Minute, time.Second)
	for i := 0; i < 3; i++ {
		h.srv.health.Check(context.Background())
	}

	status, body := h.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "degraded", health["status"])
	probe := health["backend_health"].(map[string]interface{})
	assert.Equal(t, false, probe["available"])
	assert.Equal(t, float64(3), probe["consecutive_fails"])
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter(60, 1)
	assert.True(t, rl.allow("10.0.0.1:1234"))
	assert.False(t, rl.allow("10.0.0.1:5678"))
	assert.True(t, rl.allow("10.0.0.2:1234"))

	assert.Equal(t, 0, rl.cleanup(time.Now()))
	assert.Equal(t, 2, rl.cleanup(time.Now().Add(visitorIdleTTL+time.Second)))

	var disabled *rateLimiter
	assert.True(t, disabled.allow("anything"))
}

func TestClientHelpers(t *testing.T) {
	assert.Equal(t, "10.0.0.1", clientHost("10.0.0.1:80"))
	assert.Equal(t, "::1", clientHost("[::1]:80"))
	assert.Equal(t, "weird", clientHost("weird"))

	assert.True(t, isBrowserUA("Mozilla/5.0 (X11; Linux x86_64)"))
	assert.False(t, isBrowserUA("curl/8.0"))
}
