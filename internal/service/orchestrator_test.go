package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"sysmon-agent/internal/client/remediator"
	"sysmon-agent/internal/model"
)

// =============================================================================
// Test doubles (shared across the package tests)
// =============================================================================

type notifyCall struct {
	message  string
	severity model.Severity
}

// fakeNotifier records notifications; individual calls can be made to fail.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	errOn map[int]error // zero-based call index → error to return
}

func (f *fakeNotifier) Notify(ctx context.Context, message string, severity model.Severity) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.calls)
	f.calls = append(f.calls, notifyCall{message: message, severity: severity})

	if err, ok := f.errOn[idx]; ok {
		return false, err
	}
	return true, nil
}

func (f *fakeNotifier) callsSnapshot() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifyCall(nil), f.calls...)
}

// containing returns the recorded notifications whose message contains substr.
func (f *fakeNotifier) containing(substr string) []notifyCall {
	var out []notifyCall
	for _, c := range f.callsSnapshot() {
		if strings.Contains(c.message, substr) {
			out = append(out, c)
		}
	}
	return out
}

type remediateCall struct {
	issueType string
	rctx      map[string]any
}

// fakeRemediator records remediation requests and returns a fixed outcome.
type fakeRemediator struct {
	mu    sync.Mutex
	calls []remediateCall
	ok    bool
	err   error
}

func newFakeRemediator() *fakeRemediator {
	return &fakeRemediator{ok: true}
}

func (f *fakeRemediator) Remediate(ctx context.Context, issueType string, rctx map[string]any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remediateCall{issueType: issueType, rctx: rctx})
	return f.ok, f.err
}

func (f *fakeRemediator) callsSnapshot() []remediateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remediateCall(nil), f.calls...)
}

// fakeSampler returns canned metrics or an error.
type fakeSampler struct {
	mu      sync.Mutex
	metrics *model.SystemMetrics
	err     error
	samples int
	cores   int
}

func (f *fakeSampler) Sample(ctx context.Context) (*model.SystemMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples++
	if f.err != nil {
		return nil, f.err
	}
	return f.metrics, nil
}

func (f *fakeSampler) CoreCount(ctx context.Context) int {
	if f.cores == 0 {
		return 4
	}
	return f.cores
}

func (f *fakeSampler) sampleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples
}

// newTestOrchestrator wires an orchestrator over fresh fakes and counters.
func newTestOrchestrator(notifier *fakeNotifier, rem *fakeRemediator) (*Orchestrator, *Counters) {
	counters := &Counters{}
	orchestrator := NewOrchestrator(NewEvaluator(zerolog.Nop()), notifier, rem, counters, zerolog.Nop())
	return orchestrator, counters
}

// =============================================================================
// HandleCycle tests
// =============================================================================

func TestHandleCycle_NoExcursions(t *testing.T) {
	notifier := &fakeNotifier{}
	rem := newFakeRemediator()
	orchestrator, counters := newTestOrchestrator(notifier, rem)

	result := orchestrator.HandleCycle(context.Background(), testMetrics(50, 40, 30), testMonitoringConfig())

	if result.AlertsRaised != 0 || result.RemediationsSucceeded != 0 {
		t.Errorf("result = %+v, want zero", result)
	}
	if len(notifier.callsSnapshot()) != 0 {
		t.Error("no notifications expected")
	}
	if len(rem.callsSnapshot()) != 0 {
		t.Error("no remediation requests expected")
	}
	if _, _, alerts, _ := counters.Snapshot(); alerts != 0 {
		t.Errorf("alert count = %d, want 0", alerts)
	}
}

func TestHandleCycle_SingleCPUExcursion(t *testing.T) {
	notifier := &fakeNotifier{}
	rem := newFakeRemediator()
	orchestrator, counters := newTestOrchestrator(notifier, rem)

	result := orchestrator.HandleCycle(context.Background(), testMetrics(95.0, 40.0, 50.0), testMonitoringConfig())

	if result.AlertsRaised != 1 {
		t.Errorf("AlertsRaised = %d, want 1", result.AlertsRaised)
	}

	// Alert notification text and severity are contract-fixed.
	calls := notifier.callsSnapshot()
	if len(calls) < 1 {
		t.Fatal("expected at least the alert notification")
	}
	wantMsg := "High CPU usage detected: 95.0% (threshold: 90%)"
	if calls[0].message != wantMsg {
		t.Errorf("alert message = %q, want %q", calls[0].message, wantMsg)
	}
	if calls[0].severity != model.SeverityWarning {
		t.Errorf("alert severity = %s, want warning", calls[0].severity)
	}

	// Exactly one remediation request with the contract issue type.
	remCalls := rem.callsSnapshot()
	if len(remCalls) != 1 {
		t.Fatalf("remediation calls = %d, want 1", len(remCalls))
	}
	if remCalls[0].issueType != "high_cpu" {
		t.Errorf("issue type = %s, want high_cpu", remCalls[0].issueType)
	}
	if remCalls[0].rctx["cpu_percent"] != 95.0 {
		t.Errorf("cpu_percent = %v, want 95", remCalls[0].rctx["cpu_percent"])
	}
	if remCalls[0].rctx["hostname"] != "server-01" {
		t.Errorf("hostname = %v, want server-01", remCalls[0].rctx["hostname"])
	}

	if _, _, alerts, remediations := counters.Snapshot(); alerts != 1 || remediations != 1 {
		t.Errorf("counters = alerts %d remediations %d, want 1 1", alerts, remediations)
	}
}

func TestHandleCycle_AllThreeExceeded(t *testing.T) {
	notifier := &fakeNotifier{}
	rem := newFakeRemediator()
	orchestrator, counters := newTestOrchestrator(notifier, rem)

	result := orchestrator.HandleCycle(context.Background(), testMetrics(95, 95, 95), testMonitoringConfig())

	if result.AlertsRaised != 3 {
		t.Errorf("AlertsRaised = %d, want 3", result.AlertsRaised)
	}

	// Three alert notifications, three success notifications.
	if got := len(notifier.containing("usage detected")); got != 3 {
		t.Errorf("alert notifications = %d, want 3", got)
	}
	if got := len(notifier.containing("Remediation triggered")); got != 3 {
		t.Errorf("success notifications = %d, want 3", got)
	}

	// Remediation requests arrive in the fixed cpu, memory, disk order.
	remCalls := rem.callsSnapshot()
	if len(remCalls) != 3 {
		t.Fatalf("remediation calls = %d, want 3", len(remCalls))
	}
	wantOrder := []string{"high_cpu", "high_memory", "high_disk"}
	for i, want := range wantOrder {
		if remCalls[i].issueType != want {
			t.Errorf("remediation[%d] = %s, want %s", i, remCalls[i].issueType, want)
		}
	}

	if _, _, alerts, remediations := counters.Snapshot(); alerts != 3 || remediations != 3 {
		t.Errorf("counters = alerts %d remediations %d, want 3 3", alerts, remediations)
	}
}

func TestHandleCycle_RemediationSucceeded(t *testing.T) {
	notifier := &fakeNotifier{}
	rem := newFakeRemediator()
	orchestrator, counters := newTestOrchestrator(notifier, rem)

	result := orchestrator.HandleCycle(context.Background(), testMetrics(95, 40, 40), testMonitoringConfig())

	if result.RemediationsSucceeded != 1 {
		t.Errorf("RemediationsSucceeded = %d, want 1", result.RemediationsSucceeded)
	}

	success := notifier.containing("Remediation triggered for high_cpu")
	if len(success) != 1 {
		t.Fatalf("success notifications = %d, want 1", len(success))
	}
	if success[0].severity != model.SeveritySuccess {
		t.Errorf("severity = %s, want success", success[0].severity)
	}

	if _, _, _, remediations := counters.Snapshot(); remediations != 1 {
		t.Errorf("remediation count = %d, want 1", remediations)
	}
}

func TestHandleCycle_RemediationDeclined(t *testing.T) {
	notifier := &fakeNotifier{}
	rem := newFakeRemediator()
	rem.ok = false
	orchestrator, counters := newTestOrchestrator(notifier, rem)

	result := orchestrator.HandleCycle(context.Background(), testMetrics(95, 40, 40), testMonitoringConfig())

	if result.AlertsRaised != 1 {
		t.Errorf("AlertsRaised = %d, want 1", result.AlertsRaised)
	}
	if result.RemediationsSucceeded != 0 {
		t.Errorf("RemediationsSucceeded = %d, want 0", result.RemediationsSucceeded)
	}

	failure := notifier.containing("Failed to trigger remediation for high_cpu")
	if len(failure) != 1 {
		t.Fatalf("failure notifications = %d, want 1", len(failure))
	}
	if failure[0].severity != model.SeverityError {
		t.Errorf("severity = %s, want error", failure[0].severity)
	}

	if _, _, alerts, remediations := counters.Snapshot(); alerts != 1 || remediations != 0 {
		t.Errorf("counters = alerts %d remediations %d, want 1 0", alerts, remediations)
	}
}

func TestHandleCycle_RemediationFault(t *testing.T) {
	notifier := &fakeNotifier{}
	rem := newFakeRemediator()
	rem.ok = false
	rem.err = &remediator.Fault{
		Kind:       remediator.FaultUnavailable,
		StatusCode: 503,
		Message:    "remediation service temporarily unavailable",
	}
	orchestrator, counters := newTestOrchestrator(notifier, rem)

	// Must not panic and must not propagate the fault.
	result := orchestrator.HandleCycle(context.Background(), testMetrics(95, 40, 40), testMonitoringConfig())

	if result.RemediationsSucceeded != 0 {
		t.Errorf("RemediationsSucceeded = %d, want 0", result.RemediationsSucceeded)
	}

	// Failure notification carries the fault description.
	failure := notifier.containing("Remediation failed for high_cpu")
	if len(failure) != 1 {
		t.Fatalf("fault notifications = %d, want 1", len(failure))
	}
	if !strings.Contains(failure[0].message, "temporarily unavailable") {
		t.Errorf("fault notification should describe the fault, got %q", failure[0].message)
	}

	if _, _, _, remediations := counters.Snapshot(); remediations != 0 {
		t.Errorf("remediation count = %d, want 0", remediations)
	}
}

func TestHandleCycle_NotifyFailureDoesNotBlockRemediation(t *testing.T) {
	// The alert notification for the first (CPU) event fails; the memory
	// and disk events must still be notified and remediated.
	notifier := &fakeNotifier{errOn: map[int]error{0: errors.New("slack down")}}
	rem := newFakeRemediator()
	orchestrator, counters := newTestOrchestrator(notifier, rem)

	result := orchestrator.HandleCycle(context.Background(), testMetrics(95, 95, 95), testMonitoringConfig())

	if result.AlertsRaised != 3 {
		t.Errorf("AlertsRaised = %d, want 3", result.AlertsRaised)
	}

	remCalls := rem.callsSnapshot()
	if len(remCalls) != 3 {
		t.Fatalf("remediation calls = %d, want 3 (fault isolation)", len(remCalls))
	}
	if remCalls[0].issueType != "high_cpu" || remCalls[1].issueType != "high_memory" || remCalls[2].issueType != "high_disk" {
		t.Errorf("unexpected remediation order: %+v", remCalls)
	}

	if _, _, alerts, remediations := counters.Snapshot(); alerts != 3 || remediations != 3 {
		t.Errorf("counters = alerts %d remediations %d, want 3 3", alerts, remediations)
	}
}

func TestHandleCycle_CounterInvariant(t *testing.T) {
	// Remediation declines on every call: alert count grows, remediation
	// count stays behind, the invariant remediations <= alerts holds.
	notifier := &fakeNotifier{}
	rem := newFakeRemediator()
	rem.ok = false
	orchestrator, counters := newTestOrchestrator(notifier, rem)

	for i := 0; i < 5; i++ {
		orchestrator.HandleCycle(context.Background(), testMetrics(95, 95, 40), testMonitoringConfig())
	}

	_, _, alerts, remediations := counters.Snapshot()
	if alerts != 10 {
		t.Errorf("alert count = %d, want 10", alerts)
	}
	if remediations != 0 {
		t.Errorf("remediation count = %d, want 0", remediations)
	}
	if remediations > alerts {
		t.Error("invariant violated: remediations > alerts")
	}
}
