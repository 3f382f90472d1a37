package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sysmon-agent/internal/config"
	"sysmon-agent/internal/model"
)

// testMonitoringConfig returns thresholds of 90% across the board.
func testMonitoringConfig() *config.MonitoringConfig {
	return &config.MonitoringConfig{
		CPUThreshold:    90,
		MemoryThreshold: 90,
		DiskThreshold:   90,
		CheckInterval:   30 * time.Second,
		DiskPath:        "/",
	}
}

// testMetrics builds a sample with the given utilization values.
func testMetrics(cpu, memory, disk float64) *model.SystemMetrics {
	return &model.SystemMetrics{
		CPUPercent:    cpu,
		MemoryPercent: memory,
		DiskPercent:   disk,
		Timestamp:     time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		Hostname:      "server-01",
	}
}

func TestEvaluator_NoneExceeded(t *testing.T) {
	evaluator := NewEvaluator(zerolog.Nop())

	events := evaluator.Evaluate(testMetrics(50, 40, 30), testMonitoringConfig())

	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestEvaluator_StrictlyGreaterThan(t *testing.T) {
	evaluator := NewEvaluator(zerolog.Nop())

	tests := []struct {
		name      string
		cpu       float64
		wantAlert bool
	}{
		{"below threshold", 89.9, false},
		{"exactly at threshold", 90.0, false},
		{"just above threshold", 90.1, true},
		{"far above threshold", 100.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := evaluator.Evaluate(testMetrics(tt.cpu, 40, 40), testMonitoringConfig())
			if got := len(events) == 1; got != tt.wantAlert {
				t.Errorf("cpu=%v threshold=90: alert=%v, want %v", tt.cpu, got, tt.wantAlert)
			}
		})
	}
}

func TestEvaluator_SingleMetricExceeded(t *testing.T) {
	evaluator := NewEvaluator(zerolog.Nop())

	tests := []struct {
		name    string
		metrics *model.SystemMetrics
		want    model.MetricName
	}{
		{"cpu only", testMetrics(95, 40, 50), model.MetricCPU},
		{"memory only", testMetrics(40, 95, 50), model.MetricMemory},
		{"disk only", testMetrics(40, 50, 95), model.MetricDisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := evaluator.Evaluate(tt.metrics, testMonitoringConfig())
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].MetricName != tt.want {
				t.Errorf("MetricName = %s, want %s", events[0].MetricName, tt.want)
			}
			if events[0].ThresholdValue != 90 {
				t.Errorf("ThresholdValue = %v, want 90", events[0].ThresholdValue)
			}
			if events[0].Metrics != tt.metrics {
				t.Error("event should reference the source metrics sample")
			}
		})
	}
}

func TestEvaluator_FixedEventOrder(t *testing.T) {
	evaluator := NewEvaluator(zerolog.Nop())

	// All three exceeded: order must be CPU, memory, disk.
	events := evaluator.Evaluate(testMetrics(95, 96, 97), testMonitoringConfig())

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	wantOrder := []model.MetricName{model.MetricCPU, model.MetricMemory, model.MetricDisk}
	for i, want := range wantOrder {
		if events[i].MetricName != want {
			t.Errorf("events[%d].MetricName = %s, want %s", i, events[i].MetricName, want)
		}
	}

	// Each event carries its own value.
	if events[0].CurrentValue != 95 || events[1].CurrentValue != 96 || events[2].CurrentValue != 97 {
		t.Errorf("event values = %v, %v, %v, want 95, 96, 97",
			events[0].CurrentValue, events[1].CurrentValue, events[2].CurrentValue)
	}
}

func TestEvaluator_PartialOrderPreserved(t *testing.T) {
	evaluator := NewEvaluator(zerolog.Nop())

	// CPU and disk exceeded, memory normal: order stays CPU then disk.
	events := evaluator.Evaluate(testMetrics(95, 40, 97), testMonitoringConfig())

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].MetricName != model.MetricCPU || events[1].MetricName != model.MetricDisk {
		t.Errorf("order = %s, %s, want cpu, disk", events[0].MetricName, events[1].MetricName)
	}
}

func TestEvaluator_MixedThresholds(t *testing.T) {
	evaluator := NewEvaluator(zerolog.Nop())

	cfg := testMonitoringConfig()
	cfg.CPUThreshold = 50
	cfg.MemoryThreshold = 95
	cfg.DiskThreshold = 60

	events := evaluator.Evaluate(testMetrics(55, 90, 60), cfg)

	// cpu 55 > 50 alerts, memory 90 <= 95 does not, disk 60 == 60 does not.
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].MetricName != model.MetricCPU {
		t.Errorf("MetricName = %s, want cpu", events[0].MetricName)
	}
	if events[0].ThresholdValue != 50 {
		t.Errorf("ThresholdValue = %v, want 50", events[0].ThresholdValue)
	}
}
