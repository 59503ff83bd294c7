package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"chatui/backend"
	"chatui/catalog"
	"chatui/chat"
	"chatui/config"
	"chatui/models"
	"chatui/popover"
	"chatui/prefs"
	"chatui/render"
	"chatui/session"
)

// uiSettings are the parts of the config that can change while running
type uiSettings struct {
	popover         popover.Options
	sampleQuestions []string
}

// Server serves the chat UI
type Server struct {
	backend  backend.Backend
	catalog  *catalog.Cache
	sessions *session.Store
	prefs    prefs.Store
	renderer *render.Renderer
	limiter  *rateLimiter
	health   *backend.HealthChecker
	settings atomic.Pointer[uiSettings]

	secureCookies bool
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// NewServer wires the UI to a backend and a preference store
func NewServer(cfg *config.Config, be backend.Backend, store prefs.Store) (*Server, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	s := &Server{
		backend:  be,
		catalog:  catalog.NewCache(be),
		sessions: session.NewStore(cfg.SessionTTL(), cfg.DefaultSelection),
		prefs:    store,
		renderer: renderer,
	}
	if cfg.RateLimit.Enabled {
		s.limiter = newRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}
	s.ApplyConfig(cfg)
	return s, nil
}

// ApplyConfig swaps in the settings that can be changed without a restart.
// The model catalog is dropped too and fetched again on next use.
func (s *Server) ApplyConfig(cfg *config.Config) {
	s.catalog.Invalidate()
	s.settings.Store(&uiSettings{
		popover:         cfg.PopoverOptions(),
		sampleQuestions: cfg.SampleQuestions,
	})
	s.sessions.SetDefaultSelection(cfg.DefaultSelection)
}

func (s *Server) ui() *uiSettings {
	return s.settings.Load()
}

// Routes returns the HTTP handler of the UI
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.withSession(s.handleRoot))
	mux.HandleFunc("/send", s.withSession(s.handleSend))
	mux.HandleFunc("/sample", s.withSession(s.handleSample))
	mux.HandleFunc("/new", s.withSession(s.handleNew))
	mux.HandleFunc("/theme", s.withSession(s.handleTheme))
	mux.HandleFunc("/popover/toggle", s.withSession(s.handleToggleModelPopover))
	mux.HandleFunc("/popover/expand", s.withSession(s.handleTogglePopoverExpanded))
	mux.HandleFunc("/popover/section", s.withSession(s.handleToggleProviderSection))
	mux.HandleFunc("/popover/media", s.withSession(s.handleSwitchMediaType))
	mux.HandleFunc("/popover/select", s.withSession(s.handleSelectModel))
	mux.HandleFunc("/health", s.handleHealth)
	return logRequests(mux)
}

// withSession resolves the visitor's session and refreshes its cookie
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, created := s.sessions.FromRequest(r)
		if created {
			http.SetCookie(w, s.sessions.Cookie(sess.ID, s.secureCookies || r.TLS != nil))
		}
		next(w, r, sess)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if debugMode || rec.status >= http.StatusInternalServerError {
			log.Printf("[HTTP] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
		}
	})
}

// StartHTTPServer serves handler on port until ctx is done
func StartHTTPServer(ctx context.Context, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, func() error { return srv.ListenAndServe() })
}

// StartHTTPSServer serves handler over TLS on port until ctx is done
func StartHTTPSServer(ctx context.Context, port int, certFile, keyFile string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, func() error { return srv.ListenAndServeTLS(certFile, keyFile) })
}

func serve(ctx context.Context, srv *http.Server, listen func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- listen() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return false
	}
	return true
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if q := r.URL.Query(); q.Has("filter") {
		sess.Update(func(_ *models.Selection, p *popover.State) error {
			p.SetQuery(q.Get("filter"))
			p.Open = true
			return nil
		})
		s.loadCatalog(r.Context(), sess)
	}

	s.renderPage(w, r, sess)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.syncSelection(sess)
	snap := sess.Snapshot()
	ui := s.ui()
	page := render.Page{
		Session:         snap,
		Theme:           prefs.Theme(r.Context(), s.prefs, sess.ID),
		SampleQuestions: ui.sampleQuestions,
	}
	if snap.Popover.Open {
		page.Popover = popover.Build(snap.Popover, s.catalog.Peek(), snap.Selection, ui.popover)
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, page); err != nil {
		log.Printf("[HTTP] Failed to render page: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}
	s.submit(w, r, sess, r.FormValue("q"), false)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}
	s.submit(w, r, sess, r.FormValue("question"), true)
}

// submit runs the send flow and answers in the shape the client expects:
// a message fragment for the page script, a redirect for plain form posts
// and the reply text for other clients.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, sess *session.Session, input string, sample bool) {
	if !s.limiter.allow(r.RemoteAddr) {
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	s.syncSelection(sess)
	send := sess.Conversation.Submit
	if sample {
		send = sess.Conversation.SubmitSample
	}
	msg, err := send(r.Context(), s.backend, sess.Selection(), input)
	if errors.Is(err, chat.ErrEmptyMessage) {
		if isAJAX(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		backToPage(w, r)
		return
	}
	sess.Touch()

	switch {
	case isAJAX(r):
		var buf bytes.Buffer
		if err := s.renderer.RenderMessage(&buf, msg); err != nil {
			log.Printf("[HTTP] Failed to render message: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	case wantsHTML(r):
		backToPage(w, r)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, plainReply(msg))
	}
}

// plainReply is the reply as shown to non-browser clients
func plainReply(msg chat.Message) string {
	if url, ok := msg.Response.FirstImage(); ok {
		return url
	}
	if url, ok := msg.Response.FirstVideo(); ok {
		return url
	}
	return msg.Response.FallbackText()
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}
	sess.Reset()
	backToPage(w, r)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}
	theme, err := prefs.ToggleTheme(r.Context(), s.prefs, sess.ID)
	if err != nil {
		log.Printf("[Prefs] Failed to save theme: %v", err)
		http.Error(w, "Failed to save theme", http.StatusInternalServerError)
		return
	}
	if isAJAX(r) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"theme": theme})
		return
	}
	backToPage(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "healthy",
		"services": map[string]bool{
			"http":  HTTP_PORT > 0,
			"https": HTTPS_PORT > 0,
		},
		"ports": map[string]int{
			"http":  HTTP_PORT,
			"https": HTTPS_PORT,
		},
		"mode":     "production",
		"sessions": s.sessions.Len(),
		"catalog":  s.catalog.Status(),
		"rate_limit": map[string]interface{}{
			"enabled": s.limiter != nil,
		},
	}

	if highPortMode() {
		health["mode"] = "development"
	}

	if info, ok := s.backend.(interface{ GetInfo() backend.Info }); ok {
		health["backend"] = info.GetInfo()
	}
	if s.health != nil {
		status := s.health.Status()
		health["backend_health"] = status
		if !status.Available {
			health["status"] = "degraded"
		}
	}

	// Check SSL certificates for HTTPS
	if HTTPS_PORT > 0 {
		_, _, found := findSSLCertificates()
		health["ssl_certificates"] = found
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
