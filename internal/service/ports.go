// Package service implements the alerting and remediation orchestration loop.
package service

import (
	"context"

	"sysmon-agent/internal/model"
)

// Notifier is the notification channel capability the monitor depends on.
// Delivery is best effort: the monitor never retries a failed notification
// and never lets one abort a cycle.
type Notifier interface {
	// Notify sends a severity-tagged message. It returns false without an
	// error when the message was rejected before delivery was attempted
	// (e.g. an empty message).
	Notify(ctx context.Context, message string, severity model.Severity) (bool, error)
}

// Remediator is the remediation backend capability the monitor depends on.
type Remediator interface {
	// Remediate requests automated remediation for an issue type. It
	// returns false without an error when the backend declined; typed
	// faults (unavailable, timeout, invalid request) are returned as
	// errors distinguishable with remediator.AsFault.
	Remediate(ctx context.Context, issueType string, rctx map[string]any) (bool, error)
}

// Sampler reads host utilization metrics from the operating system.
type Sampler interface {
	// Sample reads a complete metrics snapshot, or fails as a whole.
	Sample(ctx context.Context) (*model.SystemMetrics, error)
	// CoreCount reports the number of logical CPU cores, 0 if unknown.
	CoreCount(ctx context.Context) int
}
