// Package service implements the alerting and remediation orchestration loop.
package service

import (
	"github.com/rs/zerolog"

	"sysmon-agent/internal/config"
	"sysmon-agent/internal/model"
)

// Evaluator performs threshold evaluation on a metrics sample.
// Evaluation is stateless: every cycle is judged independently, with no
// smoothing, hysteresis or debounce. A metric oscillating around its
// threshold triggers a fresh alert on every crossing.
type Evaluator struct {
	logger zerolog.Logger
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		logger: logger.With().Str("component", "evaluator").Logger(),
	}
}

// Evaluate returns one AlertEvent per metric strictly above its threshold.
// Comparison is strictly greater than: a value exactly at the threshold
// does not alert. Event order is fixed as CPU, memory, disk; downstream
// consumers rely on it.
func (e *Evaluator) Evaluate(metrics *model.SystemMetrics, cfg *config.MonitoringConfig) []*model.AlertEvent {
	checks := []struct {
		name      model.MetricName
		threshold int
	}{
		{model.MetricCPU, cfg.CPUThreshold},
		{model.MetricMemory, cfg.MemoryThreshold},
		{model.MetricDisk, cfg.DiskThreshold},
	}

	var events []*model.AlertEvent
	for _, check := range checks {
		value := metrics.Value(check.name)
		if value > float64(check.threshold) {
			events = append(events, &model.AlertEvent{
				MetricName:     check.name,
				CurrentValue:   value,
				ThresholdValue: float64(check.threshold),
				Metrics:        metrics,
			})
		}
	}

	if len(events) > 0 {
		e.logger.Debug().
			Int("exceeded", len(events)).
			Str("hostname", metrics.Hostname).
			Msg("thresholds exceeded")
	}

	return events
}
