// Package service implements the alerting and remediation orchestration loop.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sysmon-agent/internal/config"
	"sysmon-agent/internal/model"
)

// CycleResult reports what one evaluation cycle produced.
type CycleResult struct {
	AlertsRaised          int // 本轮产生的告警数
	RemediationsSucceeded int // 本轮成功的修复数
}

// Orchestrator handles the alert pipeline for one evaluation cycle: for
// every exceeded metric it raises one notification and one remediation
// request, updating the shared counters.
//
// Events are processed strictly sequentially. Failures are isolated per
// event: a notification or remediation failure for one metric never
// prevents handling of the next, and nothing propagates out of HandleCycle.
type Orchestrator struct {
	evaluator  *Evaluator
	notifier   Notifier
	remediator Remediator
	counters   *Counters
	logger     zerolog.Logger
}

// NewOrchestrator creates a new Orchestrator mutating the given counters.
func NewOrchestrator(
	evaluator *Evaluator,
	notifier Notifier,
	remediator Remediator,
	counters *Counters,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		evaluator:  evaluator,
		notifier:   notifier,
		remediator: remediator,
		counters:   counters,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
	}
}

// HandleCycle evaluates one metrics sample and processes every resulting
// alert event in order.
func (o *Orchestrator) HandleCycle(ctx context.Context, metrics *model.SystemMetrics, cfg *config.MonitoringConfig) CycleResult {
	var result CycleResult

	for _, event := range o.evaluator.Evaluate(metrics, cfg) {
		o.handleAlert(ctx, event, &result)
	}

	return result
}

// handleAlert processes a single alert event: count it, notify, then
// request remediation. The alert counter and the remediation attempt
// belong together; both happen before the next event is touched.
func (o *Orchestrator) handleAlert(ctx context.Context, event *model.AlertEvent, result *CycleResult) {
	o.counters.IncAlerts()
	result.AlertsRaised++

	o.logger.Warn().
		Str("metric", string(event.MetricName)).
		Float64("current_value", event.CurrentValue).
		Float64("threshold", event.ThresholdValue).
		Msg("threshold exceeded")

	// Best-effort notify; a failure here must never abort remediation.
	o.notify(ctx, event.Message(), model.SeverityWarning)

	o.triggerRemediation(ctx, event, result)
}

// triggerRemediation requests remediation for one alert event and reports
// the outcome. Declined requests and typed faults are both surfaced via a
// failure notification; neither aborts the cycle.
func (o *Orchestrator) triggerRemediation(ctx context.Context, event *model.AlertEvent, result *CycleResult) {
	issueType := event.IssueType()

	ok, err := o.remediator.Remediate(ctx, issueType, event.RemediationContext())

	switch {
	case err != nil:
		o.logger.Error().Err(err).Str("issue_type", issueType).Msg("remediation failed")
		o.notify(ctx, fmt.Sprintf("Remediation failed for %s: %v", issueType, err), model.SeverityError)

	case ok:
		o.counters.IncRemediations()
		result.RemediationsSucceeded++
		o.notify(ctx, fmt.Sprintf("Remediation triggered for %s", issueType), model.SeveritySuccess)

	default:
		o.logger.Warn().Str("issue_type", issueType).Msg("remediation declined by backend")
		o.notify(ctx, fmt.Sprintf("Failed to trigger remediation for %s", issueType), model.SeverityError)
	}
}

// notify is the single narrow swallow point for notification failures:
// logged at warning level, never escalated.
func (o *Orchestrator) notify(ctx context.Context, message string, severity model.Severity) {
	ok, err := o.notifier.Notify(ctx, message, severity)
	if err != nil {
		o.logger.Warn().Err(err).Msg("notification failed")
		return
	}
	if !ok {
		o.logger.Warn().Msg("notification not delivered")
	}
}
