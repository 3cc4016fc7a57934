package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/Sahilcoder4/greenroute-repo/pkg/version"
)

// Health states
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ConnStatus is the last observed state of an upstream dependency
type ConnStatus struct {
	Status    string    `json:"status"` // "connected", "error"
	Latency   int64     `json:"latency_ms,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// ServiceHealth is the body served on /health
type ServiceHealth struct {
	Service       string                `json:"service"`
	Version       string                `json:"version"`
	Status        string                `json:"status"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	TableRows     int                   `json:"reference_table_rows"`
	Connections   map[string]ConnStatus `json:"connections"`
	Runtime       map[string]any        `json:"runtime,omitempty"`
}

// HealthChecker aggregates the reference table state and upstream probes.
// The service is unhealthy without a loaded table and degraded while any
// upstream probe fails, since emission estimates still work without routing.
type HealthChecker struct {
	serviceName string
	startTime   time.Time

	mu          sync.RWMutex
	tableRows   int
	connections map[string]ConnStatus

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHealthChecker(serviceName string) *HealthChecker {
	ctx, cancel := context.WithCancel(context.Background())
	return &HealthChecker{
		serviceName: serviceName,
		startTime:   time.Now(),
		connections: make(map[string]ConnStatus),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetTableRows records the size of the loaded reference table
func (h *HealthChecker) SetTableRows(n int) {
	h.mu.Lock()
	h.tableRows = n
	h.mu.Unlock()
	SetReferenceTableRows(n)
}

// UpdateConnection records the outcome of a probe
func (h *HealthChecker) UpdateConnection(name string, latency time.Duration, err error) {
	cs := ConnStatus{
		Status:    "connected",
		Latency:   latency.Milliseconds(),
		CheckedAt: time.Now(),
	}
	if err != nil {
		cs.Status = "error"
		cs.LastError = err.Error()
	}

	h.mu.Lock()
	h.connections[name] = cs
	h.mu.Unlock()
}

func (h *HealthChecker) GetHealth() ServiceHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := StatusHealthy
	conns := make(map[string]ConnStatus, len(h.connections))
	for name, c := range h.connections {
		conns[name] = c
		if c.Status != "connected" {
			status = StatusDegraded
		}
	}
	if h.tableRows == 0 {
		status = StatusUnhealthy
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return ServiceHealth{
		Service:       h.serviceName,
		Version:       version.BuildVersion,
		Status:        status,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		TableRows:     h.tableRows,
		Connections:   conns,
		Runtime: map[string]any{
			"goroutines":      runtime.NumGoroutine(),
			"memory_alloc_mb": m.Alloc / 1024 / 1024,
			"gc_runs":         m.NumGC,
		},
	}
}

// HealthHandler serves the full health report; unhealthy maps to 503
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := h.GetHealth()
		code := http.StatusOK
		if health.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, health)
	}
}

// ReadinessHandler reports whether the service can answer estimates
func (h *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := h.GetHealth()
		ready := health.Status != StatusUnhealthy
		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{"ready": ready, "status": health.Status})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// StartSystemMetrics refreshes runtime gauges until Shutdown
func (h *HealthChecker) StartSystemMetrics(interval time.Duration) {
	info := version.Get()
	SystemInfo.WithLabelValues(info.Version, info.GoVersion, info.Commit, info.BuildDate).Set(1)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.ctx.Done():
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				GoRoutines.Set(float64(runtime.NumGoroutine()))
				MemoryUsage.Set(float64(m.Alloc))
			}
		}
	}()
}

// Watch probes an upstream dependency on an interval until Shutdown
func (h *HealthChecker) Watch(name string, interval time.Duration, check func(context.Context) error) {
	probe := func() {
		ctx, cancel := context.WithTimeout(h.ctx, 10*time.Second)
		defer cancel()
		start := time.Now()
		err := check(ctx)
		h.UpdateConnection(name, time.Since(start), err)
	}

	go func() {
		probe()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.ctx.Done():
				return
			case <-ticker.C:
				probe()
			}
		}
	}()
}

func (h *HealthChecker) Shutdown() {
	h.cancel()
}
