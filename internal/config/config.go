// Package config provides configuration management for the monitoring agent.
package config

import "time"

// Config is the root configuration structure for the monitoring agent.
type Config struct {
	Monitoring MonitoringConfig `mapstructure:"monitoring" validate:"required"`
	Slack      SlackConfig      `mapstructure:"slack" validate:"required"`
	Remediator RemediatorConfig `mapstructure:"remediator" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

// MonitoringConfig contains thresholds and polling cadence for the
// monitor loop. Values are validated once at load time; the monitor
// treats them as read-only for the process lifetime.
type MonitoringConfig struct {
	CPUThreshold    int           `mapstructure:"cpu_threshold" validate:"gte=1,lte=100"`    // CPU 告警阈值（%）
	MemoryThreshold int           `mapstructure:"memory_threshold" validate:"gte=1,lte=100"` // 内存告警阈值（%）
	DiskThreshold   int           `mapstructure:"disk_threshold" validate:"gte=1,lte=100"`   // 磁盘告警阈值（%）
	CheckInterval   time.Duration `mapstructure:"check_interval"`                            // 巡检间隔（5s–3600s）
	DiskPath        string        `mapstructure:"disk_path"`                                 // 磁盘采样路径，默认 "/"
}

// SlackConfig contains configuration for the Slack notification channel.
type SlackConfig struct {
	Channel   string        `mapstructure:"channel" validate:"required"`      // 通知频道
	Token     string        `mapstructure:"token" validate:"required"`        // Bot Token（xoxb- 开头）
	Username  string        `mapstructure:"username"`                         // 机器人显示名称
	IconEmoji string        `mapstructure:"icon_emoji"`                       // 机器人图标
	APIURL    string        `mapstructure:"api_url" validate:"omitempty,url"` // API 地址（测试用，默认官方地址）
	Timeout   time.Duration `mapstructure:"timeout"`                          // 请求超时
}

// RemediatorConfig contains configuration for the remediation backend.
type RemediatorConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"` // 修复服务地址
	Timeout time.Duration `mapstructure:"timeout"`                     // 请求超时
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for remediation HTTP requests.
// Notification requests are never retried.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}
