package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"chatui/backend"
	"chatui/config"
	"chatui/prefs"
)

// Note: Port configuration lives in config.go
// Use HIGH_PORT_MODE=true environment variable for development

func main() {
	dir := configDir()
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, closeStore := openPrefs(cfg)
	defer closeStore()

	be := backend.NewClient(cfg.Backend.BaseURL, cfg.BackendTimeout())
	srv, err := NewServer(cfg, be, store)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	log.Printf("Using backend at %s", cfg.Backend.BaseURL)

	if interval := cfg.HealthInterval(); interval > 0 {
		srv.health = backend.NewHealthChecker(be, interval, 10*time.Second)
		srv.health.Start()
		defer srv.health.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.sessions.Run(ctx, cfg.SweepInterval())
	if srv.limiter != nil {
		go srv.limiter.run(ctx, time.Minute)
	}
	go func() {
		if err := config.Watch(ctx, dir, srv.ApplyConfig); err != nil {
			log.Printf("[Config] Hot reload disabled: %v", err)
		}
	}()

	handler := srv.Routes()
	var wg sync.WaitGroup

	// HTTP/HTTPS Server
	if HTTPS_PORT > 0 {
		certPath, keyPath, found := findSSLCertificates()
		if !found {
			log.Printf("WARNING: SSL certificates not found, HTTPS disabled")
			log.Printf("Expected cert.pem and key.pem in working directory")
			log.Printf("Or valid Let's Encrypt certificates for BASE_DOMAIN")
		} else {
			srv.secureCookies = true
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := StartHTTPSServer(ctx, HTTPS_PORT, certPath, keyPath, handler); err != nil {
					log.Printf("HTTPS server error: %v", err)
					stop()
				}
			}()
		}
	}

	if HTTP_PORT > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("Listening on :%d", HTTP_PORT)
			if err := StartHTTPServer(ctx, HTTP_PORT, handler); err != nil {
				log.Printf("HTTP server error: %v", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down")
	wg.Wait()
}

// openPrefs opens the configured preference store. A SQLite store that cannot
// be opened falls back to memory so the UI still works.
func openPrefs(cfg *config.Config) (prefs.Store, func()) {
	if cfg.Prefs.Driver == "sqlite" {
		store, err := prefs.OpenSQLite(cfg.Prefs.Path)
		if err == nil {
			return store, func() { store.Close() }
		}
		log.Printf("[Prefs] %v, keeping preferences in memory", err)
	}
	return prefs.NewMemoryStore(), func() {}
}
