// Package model provides data models for the monitoring agent.
package model

import "time"

// Severity represents the severity tag attached to a notification.
// The notification channel maps it to a visual marker; the core only
// passes it through unchanged.
type Severity string

const (
	SeverityInfo     Severity = "info"     // 信息
	SeverityWarning  Severity = "warning"  // 警告
	SeverityError    Severity = "error"    // 错误
	SeverityCritical Severity = "critical" // 严重
	SeveritySuccess  Severity = "success"  // 成功
)

// MonitorState represents the lifecycle state of the monitor.
type MonitorState string

const (
	StateStopped  MonitorState = "stopped"
	StateStarting MonitorState = "starting"
	StateRunning  MonitorState = "running"
	StateStopping MonitorState = "stopping"
)

// ThresholdSnapshot is the read-only view of the active thresholds
// included in a status report.
type ThresholdSnapshot struct {
	CPUThreshold    int           `json:"cpu_threshold" yaml:"cpu_threshold"`       // CPU 阈值（%）
	MemoryThreshold int           `json:"memory_threshold" yaml:"memory_threshold"` // 内存阈值（%）
	DiskThreshold   int           `json:"disk_threshold" yaml:"disk_threshold"`     // 磁盘阈值（%）
	CheckInterval   time.Duration `json:"check_interval" yaml:"check_interval"`     // 巡检间隔
}

// MonitorStatus is a consistent read-only snapshot of the monitor,
// safe to request from any goroutine at any time.
type MonitorStatus struct {
	Running          bool              `json:"running" yaml:"running"`
	State            MonitorState      `json:"state" yaml:"state"`
	StartTime        time.Time         `json:"start_time" yaml:"start_time"`
	Uptime           time.Duration     `json:"uptime" yaml:"uptime"`
	CheckCount       uint64            `json:"check_count" yaml:"check_count"`
	AlertCount       uint64            `json:"alert_count" yaml:"alert_count"`
	RemediationCount uint64            `json:"remediation_count" yaml:"remediation_count"`
	Thresholds       ThresholdSnapshot `json:"thresholds" yaml:"thresholds"`
}

// SubsystemHealth is the probe result for a single subsystem.
type SubsystemHealth struct {
	Name    string         `json:"name" yaml:"name"`                           // 子系统名称
	Healthy bool           `json:"healthy" yaml:"healthy"`                     // 是否健康
	Status  string         `json:"status" yaml:"status"`                       // 状态描述
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"` // 详细信息
}

// HealthStatus aggregates subsystem probes into an overall health report.
type HealthStatus struct {
	Healthy    bool              `json:"healthy" yaml:"healthy"`
	Status     string            `json:"status" yaml:"status"`
	Timestamp  time.Time         `json:"timestamp" yaml:"timestamp"`
	DurationMS float64           `json:"duration_ms" yaml:"duration_ms"`
	Subsystems []SubsystemHealth `json:"subsystems" yaml:"subsystems"`
}
