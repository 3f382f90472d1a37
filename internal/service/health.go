// Package service implements the alerting and remediation orchestration loop.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sysmon-agent/internal/model"
)

// healthyCeiling is the utilization above which a subsystem is reported
// unhealthy. This is a diagnostic view only; alerting decisions use the
// configured thresholds, not this value.
const healthyCeiling = 90.0

// ServiceProber is the subset of the remediation client the health
// checker needs.
type ServiceProber interface {
	Health(ctx context.Context) error
}

// HealthChecker runs passive diagnostic probes over the local system and
// the remediation service. It feeds no alerting decisions.
type HealthChecker struct {
	sampler Sampler
	prober  ServiceProber
	logger  zerolog.Logger
}

// NewHealthChecker creates a HealthChecker. prober may be nil, in which
// case the remediation service probe is skipped.
func NewHealthChecker(smp Sampler, prober ServiceProber, logger zerolog.Logger) *HealthChecker {
	return &HealthChecker{
		sampler: smp,
		prober:  prober,
		logger:  logger.With().Str("component", "health").Logger(),
	}
}

// Check probes all subsystems concurrently and aggregates the results.
// Individual probe failures are reported as unhealthy subsystems; Check
// itself only fails on context cancellation.
func (h *HealthChecker) Check(ctx context.Context) *model.HealthStatus {
	start := time.Now()

	var (
		mu         sync.Mutex
		subsystems []model.SubsystemHealth
	)
	add := func(s model.SubsystemHealth) {
		mu.Lock()
		defer mu.Unlock()
		subsystems = append(subsystems, s)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for _, s := range h.checkSystem(gctx) {
			add(s)
		}
		return nil
	})

	if h.prober != nil {
		g.Go(func() error {
			add(h.checkRemediationService(gctx))
			return nil
		})
	}

	// Probes report failures through their results, never as errors.
	_ = g.Wait()

	// Fixed output order regardless of probe completion order.
	ordered := orderSubsystems(subsystems)

	healthy := true
	status := "healthy"
	for _, s := range ordered {
		if !s.Healthy {
			healthy = false
			status = "unhealthy: " + s.Name + " " + s.Status
			break
		}
	}

	result := &model.HealthStatus{
		Healthy:    healthy,
		Status:     status,
		Timestamp:  time.Now(),
		DurationMS: float64(time.Since(start).Microseconds()) / 1000.0,
		Subsystems: ordered,
	}

	h.logger.Debug().
		Bool("healthy", result.Healthy).
		Float64("duration_ms", result.DurationMS).
		Msg("health check completed")

	return result
}

// checkSystem samples the host once and grades each metric.
func (h *HealthChecker) checkSystem(ctx context.Context) []model.SubsystemHealth {
	metrics, err := h.sampler.Sample(ctx)
	if err != nil {
		failed := model.SubsystemHealth{
			Healthy: false,
			Status:  fmt.Sprintf("check failed: %v", err),
		}
		out := make([]model.SubsystemHealth, 0, 3)
		for _, name := range []model.MetricName{model.MetricCPU, model.MetricMemory, model.MetricDisk} {
			s := failed
			s.Name = string(name)
			out = append(out, s)
		}
		return out
	}

	out := make([]model.SubsystemHealth, 0, 3)
	for _, name := range []model.MetricName{model.MetricCPU, model.MetricMemory, model.MetricDisk} {
		value := metrics.Value(name)
		healthy := value < healthyCeiling
		status := "normal"
		if !healthy {
			status = fmt.Sprintf("high usage: %.1f%%", value)
		}
		out = append(out, model.SubsystemHealth{
			Name:    string(name),
			Healthy: healthy,
			Status:  status,
			Details: map[string]any{
				"percent":  value,
				"hostname": metrics.Hostname,
			},
		})
	}
	return out
}

// checkRemediationService probes the remediation backend health endpoint.
func (h *HealthChecker) checkRemediationService(ctx context.Context) model.SubsystemHealth {
	if err := h.prober.Health(ctx); err != nil {
		return model.SubsystemHealth{
			Name:    "remediation_service",
			Healthy: false,
			Status:  fmt.Sprintf("unavailable: %v", err),
		}
	}
	return model.SubsystemHealth{
		Name:    "remediation_service",
		Healthy: true,
		Status:  "available",
	}
}

// orderSubsystems returns subsystems in the fixed cpu, memory, disk,
// remediation_service order.
func orderSubsystems(subsystems []model.SubsystemHealth) []model.SubsystemHealth {
	order := []string{"cpu", "memory", "disk", "remediation_service"}

	byName := make(map[string]model.SubsystemHealth, len(subsystems))
	for _, s := range subsystems {
		byName[s.Name] = s
	}

	ordered := make([]model.SubsystemHealth, 0, len(subsystems))
	for _, name := range order {
		if s, ok := byName[name]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered
}
