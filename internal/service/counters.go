// Package service implements the alerting and remediation orchestration loop.
package service

import (
	"sync"
	"time"
)

// Counters holds the running totals for the life of the process. All
// counts are monotonically non-decreasing; remediations <= alerts always
// holds because a remediation is only counted on a confirmed success.
//
// Counters are mutated only from the polling goroutine, but snapshots may
// be requested concurrently from any goroutine, so reads and writes are
// guarded.
type Counters struct {
	mu               sync.RWMutex
	startTime        time.Time
	checkCount       uint64
	alertCount       uint64
	remediationCount uint64
}

// MarkStart records the start instant. Set once per process lifetime.
func (c *Counters) MarkStart(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = t
}

// IncChecks records one evaluation cycle attempt.
func (c *Counters) IncChecks() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkCount++
}

// IncAlerts records one produced alert event.
func (c *Counters) IncAlerts() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alertCount++
}

// IncRemediations records one confirmed successful remediation.
func (c *Counters) IncRemediations() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remediationCount++
}

// Snapshot returns a consistent view of all counters.
func (c *Counters) Snapshot() (startTime time.Time, checks, alerts, remediations uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startTime, c.checkCount, c.alertCount, c.remediationCount
}
