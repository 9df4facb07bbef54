package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthStatus represents the overall health state.
type HealthStatus string

// Health states.
const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// CheckFunc performs one health check; nil means healthy.
type CheckFunc func() error

// HealthCheck aggregates named checks and key collector metrics.
type HealthCheck struct {
	mu        sync.RWMutex
	checks    map[string]CheckFunc
	collector *Collector
	startTime time.Time
	version   string
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Metrics   *HealthMetrics         `json:"metrics,omitempty"`
}

// CheckResult is the outcome of a single named check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthMetrics summarizes collector state for health monitoring.
type HealthMetrics struct {
	RunsTotal    uint64  `json:"runs_total"`
	RunsFailed   uint64  `json:"runs_failed"`
	EncryptOps   uint64  `json:"encrypt_ops"`
	DecryptOps   uint64  `json:"decrypt_ops"`
	AuthFailures uint64  `json:"auth_failures"`
	MeanQBER     float64 `json:"mean_qber"`
}

// NewHealthCheck creates a health check backed by collector.
func NewHealthCheck(collector *Collector, version string) *HealthCheck {
	return &HealthCheck{
		checks:    make(map[string]CheckFunc),
		collector: collector,
		startTime: time.Now(),
		version:   version,
	}
}

// AddCheck registers a named health check.
func (h *HealthCheck) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Check performs all health checks and returns the overall status.
func (h *HealthCheck) Check() HealthResponse {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()

	resp := HealthResponse{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    make(map[string]CheckResult, len(checks)),
	}

	for name, check := range checks {
		result := CheckResult{Status: HealthStatusHealthy}
		if err := check(); err != nil {
			result.Status = HealthStatusUnhealthy
			result.Message = err.Error()
			resp.Status = HealthStatusUnhealthy
		}
		resp.Checks[name] = result
	}

	if h.collector != nil {
		snap := h.collector.Snapshot()
		resp.Metrics = &HealthMetrics{
			RunsTotal:    snap.RunsTotal,
			RunsFailed:   snap.RunsFailed,
			EncryptOps:   snap.EncryptOps,
			DecryptOps:   snap.DecryptOps,
			AuthFailures: snap.AuthFailures,
			MeanQBER:     snap.MeanQBER,
		}
	}

	return resp
}

// Handler returns an http.Handler serving health check responses.
// Unhealthy states map to 503.
func (h *HealthCheck) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check()
		w.Header().Set("Content-Type", "application/json")
		if resp.Status != HealthStatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
}
