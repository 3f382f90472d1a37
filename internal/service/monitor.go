// Package service implements the alerting and remediation orchestration loop.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sysmon-agent/internal/config"
	"sysmon-agent/internal/model"
)

// stopWaitTimeout bounds how long Stop waits for an in-flight cycle.
const stopWaitTimeout = 5 * time.Second

// Monitor owns the polling loop lifecycle: Stopped → Starting → Running →
// Stopping → Stopped. It drives the cadence, owns the counters, and keeps
// running through sampling failures and port faults; the only way to end
// the loop is Stop.
type Monitor struct {
	cfg          *config.Config
	sampler      Sampler
	notifier     Notifier
	orchestrator *Orchestrator
	counters     *Counters
	logger       zerolog.Logger

	mu     sync.Mutex
	state  model.MonitorState
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a Monitor wired to the given ports. All dependencies
// are passed in explicitly; the monitor holds no global state.
func NewMonitor(
	cfg *config.Config,
	smp Sampler,
	notifier Notifier,
	remediator Remediator,
	logger zerolog.Logger,
) *Monitor {
	counters := &Counters{}
	evaluator := NewEvaluator(logger)
	orchestrator := NewOrchestrator(evaluator, notifier, remediator, counters, logger)

	return &Monitor{
		cfg:          cfg,
		sampler:      smp,
		notifier:     notifier,
		orchestrator: orchestrator,
		counters:     counters,
		logger:       logger.With().Str("component", "monitor").Logger(),
		state:        model.StateStopped,
	}
}

// Start begins monitoring and returns once the polling loop is scheduled.
// It performs one synchronous evaluation cycle immediately, so an already
// ongoing incident is not hidden for the first check interval. Calling
// Start while not stopped is a no-op with a warning.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != model.StateStopped {
		m.mu.Unlock()
		m.logger.Warn().Str("state", string(m.state)).Msg("monitor is already running")
		return nil
	}
	m.state = model.StateStarting

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.counters.MarkStart(time.Now())
	m.mu.Unlock()

	m.logger.Info().
		Int("cpu_threshold", m.cfg.Monitoring.CPUThreshold).
		Int("memory_threshold", m.cfg.Monitoring.MemoryThreshold).
		Int("disk_threshold", m.cfg.Monitoring.DiskThreshold).
		Dur("check_interval", m.cfg.Monitoring.CheckInterval).
		Msg("starting system monitoring")

	// Initial synchronous check before the ticker takes over.
	m.runCycle(loopCtx)

	m.mu.Lock()
	m.state = model.StateRunning
	m.mu.Unlock()

	go m.loop(loopCtx)

	m.notifyBestEffort(loopCtx,
		fmt.Sprintf("🤖 sysmon monitoring started on %d CPU system", m.sampler.CoreCount(loopCtx)),
		model.SeverityInfo)

	return nil
}

// Run starts the monitor and blocks until the context is cancelled, then
// performs a clean stop. This is the daemon entry point; embedders that
// want control of the blocking behavior use Start/Stop directly.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	m.Stop()
	return nil
}

// Stop cancels the polling loop, waits (bounded) for an in-flight cycle,
// sends the shutdown notification and transitions to Stopped. Calling
// Stop while already stopped or stopping is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state == model.StateStopped || m.state == model.StateStopping {
		m.mu.Unlock()
		return
	}
	m.state = model.StateStopping
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	m.logger.Info().Msg("stopping system monitoring")
	cancel()

	// Bounded wait so a hung port call cannot wedge shutdown.
	select {
	case <-done:
	case <-time.After(stopWaitTimeout):
		m.logger.Warn().Msg("timed out waiting for in-flight cycle to finish")
	}

	startTime, checks, alerts, _ := m.counters.Snapshot()
	uptime := time.Since(startTime).Round(time.Second)

	// The loop context is already cancelled; the shutdown notification
	// gets its own bounded context.
	notifyCtx, cancelNotify := context.WithTimeout(context.Background(), stopWaitTimeout)
	defer cancelNotify()
	m.notifyBestEffort(notifyCtx,
		fmt.Sprintf("🛑 sysmon monitoring stopped. Uptime: %s, Checks: %d, Alerts: %d", uptime, checks, alerts),
		model.SeverityInfo)

	m.mu.Lock()
	m.state = model.StateStopped
	m.mu.Unlock()

	m.logger.Info().
		Dur("uptime", uptime).
		Uint64("checks", checks).
		Uint64("alerts", alerts).
		Msg("system monitoring stopped")
}

// Status returns a consistent read-only snapshot. Safe to call from any
// goroutine in any state, including while stopping.
func (m *Monitor) Status() model.MonitorStatus {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	startTime, checks, alerts, remediations := m.counters.Snapshot()

	var uptime time.Duration
	if !startTime.IsZero() {
		uptime = time.Since(startTime)
	}

	return model.MonitorStatus{
		Running:          state == model.StateRunning,
		State:            state,
		StartTime:        startTime,
		Uptime:           uptime,
		CheckCount:       checks,
		AlertCount:       alerts,
		RemediationCount: remediations,
		Thresholds: model.ThresholdSnapshot{
			CPUThreshold:    m.cfg.Monitoring.CPUThreshold,
			MemoryThreshold: m.cfg.Monitoring.MemoryThreshold,
			DiskThreshold:   m.cfg.Monitoring.DiskThreshold,
			CheckInterval:   m.cfg.Monitoring.CheckInterval,
		},
	}
}

// loop runs the periodic schedule until the context is cancelled.
func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.Monitoring.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// runCycle executes one sample → evaluate → alert cycle. A sampling
// failure skips this cycle only; the schedule continues regardless.
func (m *Monitor) runCycle(ctx context.Context) {
	start := time.Now()
	m.counters.IncChecks()

	metrics, err := m.sampler.Sample(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("system check failed")
		m.notifyBestEffort(ctx, fmt.Sprintf("System check failed: %v", err), model.SeverityError)
		return
	}

	_, checks, _, _ := m.counters.Snapshot()
	m.logger.Debug().
		Uint64("check", checks).
		Float64("cpu_percent", metrics.CPUPercent).
		Float64("memory_percent", metrics.MemoryPercent).
		Float64("disk_percent", metrics.DiskPercent).
		Msg("system check")

	m.orchestrator.HandleCycle(ctx, metrics, &m.cfg.Monitoring)

	m.logger.Debug().Dur("duration", time.Since(start)).Msg("system check completed")
}

// notifyBestEffort sends a lifecycle notification, swallowing failures.
func (m *Monitor) notifyBestEffort(ctx context.Context, message string, severity model.Severity) {
	if _, err := m.notifier.Notify(ctx, message, severity); err != nil {
		m.logger.Warn().Err(err).Msg("could not send notification")
	}
}
