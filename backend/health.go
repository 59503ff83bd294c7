package backend

import (
	"context"
	"log"
	"sync"
	"time"
)

// unavailableAfter is the number of consecutive failed probes after which
// the backend is reported unavailable.
const unavailableAfter = 3

// HealthStatus is the last known state of the backend
type HealthStatus struct {
	Healthy          bool          `json:"healthy"`
	Available        bool          `json:"available"`
	ConsecutiveFails int           `json:"consecutive_fails"`
	LastCheck        time.Time     `json:"last_check"`
	ResponseTime     time.Duration `json:"response_time_ns"`
	AverageLatencyMs float64       `json:"average_latency_ms"`
	ErrorMessage     string        `json:"error,omitempty"`
}

// HealthChecker probes the backend's catalog endpoint on an interval
type HealthChecker struct {
	backend  Backend
	interval time.Duration
	timeout  time.Duration

	mu       sync.RWMutex
	status   HealthStatus
	running  bool
	stopChan chan struct{}
}

// NewHealthChecker creates a new health checker. The backend is assumed
// available until the first probe says otherwise.
func NewHealthChecker(be Backend, interval, timeout time.Duration) *HealthChecker {
	return &HealthChecker{
		backend:  be,
		interval: interval,
		timeout:  timeout,
		status:   HealthStatus{Available: true},
		stopChan: make(chan struct{}),
	}
}

// Start begins health checking
func (hc *HealthChecker) Start() {
	hc.mu.Lock()
	if hc.running {
		hc.mu.Unlock()
		return
	}
	hc.running = true
	hc.mu.Unlock()

	go hc.run()
}

// Stop stops health checking
func (hc *HealthChecker) Stop() {
	hc.mu.Lock()
	if !hc.running {
		hc.mu.Unlock()
		return
	}
	hc.running = false
	hc.mu.Unlock()

	close(hc.stopChan)
}

func (hc *HealthChecker) run() {
	hc.Check(context.Background())

	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hc.Check(context.Background())
		case <-hc.stopChan:
			return
		}
	}
}

// Check runs one probe and returns the updated status
func (hc *HealthChecker) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	start := time.Now()
	_, err := hc.backend.Categorized(ctx)
	responseTime := time.Since(start)

	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.status.LastCheck = time.Now()
	if err != nil {
		hc.status.Healthy = false
		hc.status.ConsecutiveFails++
		hc.status.ErrorMessage = err.Error()
		if hc.status.ConsecutiveFails >= unavailableAfter {
			hc.status.Available = false
		}
		log.Printf("[Health] Backend check failed (%d in a row): %v", hc.status.ConsecutiveFails, err)
		return hc.status
	}

	hc.status.Healthy = true
	hc.status.Available = true
	hc.status.ConsecutiveFails = 0
	hc.status.ErrorMessage = ""
	hc.status.ResponseTime = responseTime

	// Simple moving average
	ms := float64(responseTime.Milliseconds())
	if hc.status.AverageLatencyMs == 0 {
		hc.status.AverageLatencyMs = ms
	} else {
		hc.status.AverageLatencyMs = hc.status.AverageLatencyMs*0.9 + ms*0.1
	}
	return hc.status
}

// Status returns the last recorded status
func (hc *HealthChecker) Status() HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}
