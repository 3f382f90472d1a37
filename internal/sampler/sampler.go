// Package sampler reads host utilization metrics from the operating system.
package sampler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"sysmon-agent/internal/model"
)

// cpuSampleInterval is how long the CPU read blocks to obtain an
// interval-averaged percentage. Instantaneous point samples are too noisy
// for threshold decisions; one second of blocking is acceptable because
// sampling runs on its own cadence, not a request path.
const cpuSampleInterval = 1 * time.Second

// SamplingError indicates that an OS metric read failed. The whole sample
// is discarded; partial results are never returned.
type SamplingError struct {
	Metric string // 采集失败的指标
	Err    error  // 底层错误
}

// Error implements the error interface.
func (e *SamplingError) Error() string {
	return fmt.Sprintf("failed to sample %s: %v", e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *SamplingError) Unwrap() error {
	return e.Err
}

// Sampler reads CPU, memory and disk utilization plus host identity.
type Sampler struct {
	diskPath string // 磁盘采样路径
	logger   zerolog.Logger
}

// New creates a Sampler reading disk usage from the given path.
// An empty path defaults to the root filesystem.
func New(diskPath string, logger zerolog.Logger) *Sampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Sampler{
		diskPath: diskPath,
		logger:   logger.With().Str("component", "sampler").Logger(),
	}
}

// Sample reads a complete SystemMetrics snapshot. Either all fields are
// populated or an error is returned; the CPU read blocks for about one
// second (see cpuSampleInterval).
func (s *Sampler) Sample(ctx context.Context) (*model.SystemMetrics, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if err != nil {
		return nil, &SamplingError{Metric: "cpu", Err: err}
	}
	if len(cpuPercents) == 0 {
		return nil, &SamplingError{Metric: "cpu", Err: fmt.Errorf("no cpu data returned")}
	}

	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, &SamplingError{Metric: "memory", Err: err}
	}

	usage, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return nil, &SamplingError{Metric: "disk", Err: err}
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, &SamplingError{Metric: "hostname", Err: err}
	}

	metrics := &model.SystemMetrics{
		CPUPercent:    cpuPercents[0],
		MemoryPercent: vmem.UsedPercent,
		DiskPercent:   usage.UsedPercent,
		Timestamp:     time.Now(),
		Hostname:      hostname,
	}

	s.logger.Debug().
		Float64("cpu_percent", metrics.CPUPercent).
		Float64("memory_percent", metrics.MemoryPercent).
		Float64("disk_percent", metrics.DiskPercent).
		Str("hostname", metrics.Hostname).
		Msg("sampled system metrics")

	return metrics, nil
}

// CoreCount returns the number of logical CPU cores, or 0 if the count
// cannot be determined.
func (s *Sampler) CoreCount(ctx context.Context) int {
	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not determine cpu core count")
		return 0
	}
	return count
}
