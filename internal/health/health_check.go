package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/allocator"
	"github.com/ordinate-io/sequencer/internal/leasestore"
	"github.com/ordinate-io/sequencer/internal/model"
)

// HealthChecker performs periodic health checks for the sequencer: is the
// persisted lease store reachable, and is the global tail still comfortably
// inside the current lease boundary.
type HealthChecker struct {
	nodeID    string
	allocator *allocator.Allocator
	store     leasestore.Store
	logger    *zap.Logger

	mu          sync.RWMutex
	lastCheck   time.Time
	status      model.NodeStatus
	checks      map[string]CheckResult
	livenessOK  bool
	readinessOK bool
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name      string
	Status    string
	Message   string
	Timestamp time.Time
}

// HealthCheckConfig holds configuration for health checks.
type HealthCheckConfig struct {
	NodeID string
}

// NewHealthChecker creates a new health checker bound to alloc and store.
func NewHealthChecker(cfg *HealthCheckConfig, alloc *allocator.Allocator, store leasestore.Store, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		nodeID:      cfg.NodeID,
		allocator:   alloc,
		store:       store,
		logger:      logger,
		checks:      make(map[string]CheckResult),
		livenessOK:  true,
		readinessOK: true,
		status:      model.NodeStatusHealthy,
	}
}

// Start runs health checks on a fixed interval until ctx is done.
func (h *HealthChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	h.runHealthChecks(ctx)

	for {
		select {
		case <-ticker.C:
			h.runHealthChecks(ctx)
		case <-ctx.Done():
			h.logger.Info("health checker stopped")
			return
		}
	}
}

func (h *HealthChecker) runHealthChecks(ctx context.Context) {
	checks := []func(context.Context) CheckResult{
		h.checkLeaseStoreReachable,
		h.checkLeaseHeadroom,
	}

	results := make(map[string]CheckResult, len(checks))
	allHealthy := true
	allReady := true

	for _, check := range checks {
		result := check(ctx)
		results[result.Name] = result

		if result.Status != "healthy" {
			allHealthy = false
			if result.Status == "critical" {
				allReady = false
			}
		}
	}

	h.mu.Lock()
	h.lastCheck = time.Now()
	h.checks = results

	switch {
	case !allHealthy && !allReady:
		h.status = model.NodeStatusUnhealthy
	case !allHealthy:
		h.status = model.NodeStatusDegraded
	default:
		h.status = model.NodeStatusHealthy
	}

	h.livenessOK = true
	h.readinessOK = allReady
	h.mu.Unlock()

	h.logger.Debug("health check completed",
		zap.String("status", string(h.status)),
		zap.Bool("ready", allReady))
}

// checkLeaseStoreReachable pings the persisted lease store. An unreachable
// store means renewal will fail the next time the tail needs it, which
// eventually surfaces as LeaseExhausted to clients — mark not-ready now
// rather than waiting for that to happen mid-request.
func (h *HealthChecker) checkLeaseStoreReachable(ctx context.Context) CheckResult {
	if err := h.store.Ping(ctx); err != nil {
		return CheckResult{
			Name:      "lease_store_reachable",
			Status:    "critical",
			Message:   fmt.Sprintf("lease store unreachable: %v", err),
			Timestamp: time.Now(),
		}
	}
	return CheckResult{
		Name:      "lease_store_reachable",
		Status:    "healthy",
		Message:   "lease store reachable",
		Timestamp: time.Now(),
	}
}

// checkLeaseHeadroom flags a node whose tail has reached its lease limit,
// which would mean renewal is failing silently (e.g. retrying forever rather
// than erroring) even though Ping succeeds.
func (h *HealthChecker) checkLeaseHeadroom(ctx context.Context) CheckResult {
	tail := h.allocator.GlobalTail()
	limit := h.allocator.LeaseLimit()

	if tail >= limit {
		return CheckResult{
			Name:      "lease_headroom",
			Status:    "critical",
			Message:   fmt.Sprintf("global tail %d is pinned against lease limit %d", tail, limit),
			Timestamp: time.Now(),
		}
	}

	return CheckResult{
		Name:      "lease_headroom",
		Status:    "healthy",
		Message:   fmt.Sprintf("global tail at %d, lease limit at %d", tail, limit),
		Timestamp: time.Now(),
	}
}

// IsLive returns whether the node is live (liveness probe).
func (h *HealthChecker) IsLive() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.livenessOK
}

// IsReady returns whether the node is ready (readiness probe).
func (h *HealthChecker) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.readinessOK
}

// GetStatus returns the current health status.
func (h *HealthChecker) GetStatus() model.HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return model.HealthStatus{
		NodeID:    h.nodeID,
		Status:    h.status,
		Timestamp: h.lastCheck.Unix(),
		Metrics:   model.HealthMetrics{GlobalTail: h.allocator.GlobalTail()},
	}
}

// GetChecks returns a copy of all check results.
func (h *HealthChecker) GetChecks() map[string]CheckResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	checks := make(map[string]CheckResult, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	return checks
}

// SetReadiness manually overrides readiness, used during graceful shutdown
// to start failing readiness probes before the gRPC server stops accepting.
func (h *HealthChecker) SetReadiness(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readinessOK = ready
}

// LivenessHandler handles HTTP liveness probe requests.
func (h *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	live := h.IsLive()
	status := h.GetStatus()

	w.Header().Set("Content-Type", "application/json")
	if !live {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"healthy": live,
		"status":  status.Status,
	})
}

// ReadinessHandler handles HTTP readiness probe requests.
func (h *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ready := h.IsReady()
	status := h.GetStatus()

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":  ready,
		"status": status.Status,
	})
}
