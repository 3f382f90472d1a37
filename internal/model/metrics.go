// Package model provides data models for the monitoring agent.
package model

import (
	"fmt"
	"time"
)

// MetricName identifies one of the tracked system metrics.
type MetricName string

const (
	MetricCPU    MetricName = "cpu"    // CPU 利用率
	MetricMemory MetricName = "memory" // 内存利用率
	MetricDisk   MetricName = "disk"   // 磁盘利用率
)

// DisplayName returns the human-readable name used in alert messages.
func (m MetricName) DisplayName() string {
	switch m {
	case MetricCPU:
		return "CPU"
	case MetricMemory:
		return "Memory"
	case MetricDisk:
		return "Disk"
	default:
		return string(m)
	}
}

// SystemMetrics is a point-in-time sample of host utilization.
// It is created once per poll cycle and never persisted.
type SystemMetrics struct {
	CPUPercent    float64   `json:"cpu_percent" yaml:"cpu_percent"`       // CPU 使用率（%）
	MemoryPercent float64   `json:"memory_percent" yaml:"memory_percent"` // 内存使用率（%）
	DiskPercent   float64   `json:"disk_percent" yaml:"disk_percent"`     // 磁盘使用率（%）
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`           // 采集时间
	Hostname      string    `json:"hostname" yaml:"hostname"`             // 主机名
}

// Value returns the sampled value for the given metric.
func (s *SystemMetrics) Value(name MetricName) float64 {
	switch name {
	case MetricCPU:
		return s.CPUPercent
	case MetricMemory:
		return s.MemoryPercent
	case MetricDisk:
		return s.DiskPercent
	default:
		return 0
	}
}

// AlertEvent represents one detected threshold excursion for one metric
// in one sampling cycle.
type AlertEvent struct {
	MetricName     MetricName     `json:"metric_name"`     // 指标名称
	CurrentValue   float64        `json:"current_value"`   // 当前值
	ThresholdValue float64        `json:"threshold_value"` // 阈值
	Metrics        *SystemMetrics `json:"metrics"`         // 触发告警的采样数据
}

// IssueType derives the issue type tag shared with the remediation backend.
// The "high_<metric>" format is a contract key and must match exactly.
func (e *AlertEvent) IssueType() string {
	return "high_" + string(e.MetricName)
}

// Message builds the human-readable alert message for this event.
func (e *AlertEvent) Message() string {
	return fmt.Sprintf("High %s usage detected: %.1f%% (threshold: %g%%)",
		e.MetricName.DisplayName(), e.CurrentValue, e.ThresholdValue)
}

// RemediationContext builds the context payload sent to the remediation
// backend: hostname, ISO-8601 timestamp, the exceeding value keyed as
// "<metric>_percent", and the threshold it exceeded.
func (e *AlertEvent) RemediationContext() map[string]any {
	rctx := map[string]any{
		"hostname":  e.Metrics.Hostname,
		"timestamp": e.Metrics.Timestamp.Format(time.RFC3339),
		"threshold": e.ThresholdValue,
	}
	rctx[string(e.MetricName)+"_percent"] = e.CurrentValue
	return rctx
}
