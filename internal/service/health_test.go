package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeProber struct {
	err error
}

func (f *fakeProber) Health(ctx context.Context) error {
	return f.err
}

func TestHealthCheck_AllHealthy(t *testing.T) {
	smp := &fakeSampler{metrics: testMetrics(25, 40, 60)}
	checker := NewHealthChecker(smp, &fakeProber{}, zerolog.Nop())

	result := checker.Check(context.Background())

	if !result.Healthy {
		t.Errorf("healthy = false, want true: %+v", result)
	}
	if result.Status != "healthy" {
		t.Errorf("status = %q, want healthy", result.Status)
	}

	names := make([]string, 0, len(result.Subsystems))
	for _, s := range result.Subsystems {
		names = append(names, s.Name)
		if !s.Healthy {
			t.Errorf("subsystem %s unhealthy: %s", s.Name, s.Status)
		}
	}
	want := []string{"cpu", "memory", "disk", "remediation_service"}
	if len(names) != len(want) {
		t.Fatalf("subsystems = %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("subsystem[%d] = %s, want %s", i, names[i], name)
		}
	}
}

func TestHealthCheck_HighUsageIsUnhealthy(t *testing.T) {
	smp := &fakeSampler{metrics: testMetrics(25, 96.5, 60)}
	checker := NewHealthChecker(smp, nil, zerolog.Nop())

	result := checker.Check(context.Background())

	if result.Healthy {
		t.Error("healthy = true, want false")
	}
	if !strings.Contains(result.Status, "memory") {
		t.Errorf("status = %q, want memory mentioned", result.Status)
	}

	for _, s := range result.Subsystems {
		switch s.Name {
		case "memory":
			if s.Healthy {
				t.Error("memory should be unhealthy")
			}
			if !strings.Contains(s.Status, "96.5%") {
				t.Errorf("memory status = %q, want usage value", s.Status)
			}
		default:
			if !s.Healthy {
				t.Errorf("subsystem %s unhealthy: %s", s.Name, s.Status)
			}
		}
	}
}

func TestHealthCheck_NilProberSkipsService(t *testing.T) {
	smp := &fakeSampler{metrics: testMetrics(25, 40, 60)}
	checker := NewHealthChecker(smp, nil, zerolog.Nop())

	result := checker.Check(context.Background())

	for _, s := range result.Subsystems {
		if s.Name == "remediation_service" {
			t.Fatal("remediation_service probed without a prober")
		}
	}
	if len(result.Subsystems) != 3 {
		t.Errorf("subsystems = %d, want 3", len(result.Subsystems))
	}
}

func TestHealthCheck_SamplerFailure(t *testing.T) {
	smp := &fakeSampler{err: errors.New("proc filesystem unavailable")}
	checker := NewHealthChecker(smp, &fakeProber{}, zerolog.Nop())

	result := checker.Check(context.Background())

	if result.Healthy {
		t.Error("healthy = true, want false")
	}

	unhealthy := 0
	for _, s := range result.Subsystems {
		if s.Name == "remediation_service" {
			if !s.Healthy {
				t.Error("remediation_service should stay healthy on a sampler failure")
			}
			continue
		}
		if s.Healthy {
			t.Errorf("subsystem %s should be unhealthy", s.Name)
		}
		if !strings.Contains(s.Status, "check failed") {
			t.Errorf("subsystem %s status = %q, want check failed", s.Name, s.Status)
		}
		unhealthy++
	}
	if unhealthy != 3 {
		t.Errorf("unhealthy system subsystems = %d, want 3", unhealthy)
	}
}

func TestHealthCheck_ProberFailure(t *testing.T) {
	smp := &fakeSampler{metrics: testMetrics(25, 40, 60)}
	checker := NewHealthChecker(smp, &fakeProber{err: errors.New("connection refused")}, zerolog.Nop())

	result := checker.Check(context.Background())

	if result.Healthy {
		t.Error("healthy = true, want false")
	}
	if !strings.Contains(result.Status, "remediation_service") {
		t.Errorf("status = %q, want remediation_service mentioned", result.Status)
	}

	for _, s := range result.Subsystems {
		if s.Name != "remediation_service" {
			continue
		}
		if s.Healthy {
			t.Error("remediation_service should be unhealthy")
		}
		if !strings.Contains(s.Status, "unavailable") {
			t.Errorf("remediation_service status = %q, want unavailable", s.Status)
		}
	}
}
