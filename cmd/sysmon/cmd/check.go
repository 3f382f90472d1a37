// Package cmd implements CLI commands for the sysmon agent.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sysmon-agent/internal/config"
	"sysmon-agent/internal/model"
	"sysmon-agent/internal/sampler"
	"sysmon-agent/internal/service"
)

// Command flags
var (
	checkFormat string // Output format (yaml, json)
	checkQuiet  bool   // Suppress console decoration, print the report only
)

// checkTimeout bounds the one-shot sampling run.
const checkTimeout = 30 * time.Second

// checkReport is the serialized result of a one-shot check.
type checkReport struct {
	Metrics *model.SystemMetrics `json:"metrics" yaml:"metrics"`
	Alerts  []checkAlert         `json:"alerts" yaml:"alerts"`
}

// checkAlert is one threshold excursion in a check report.
type checkAlert struct {
	Metric    string  `json:"metric" yaml:"metric"`
	Value     float64 `json:"value" yaml:"value"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	IssueType string  `json:"issue_type" yaml:"issue_type"`
	Message   string  `json:"message" yaml:"message"`
}

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "执行一次性检查",
	Long: `采集一次 CPU、内存、磁盘使用率，根据配置阈值评估，
输出 YAML 或 JSON 格式的检查报告。不发送告警，不触发修复。

退出码: 0 表示无超限指标，1 表示存在超限指标。

示例:
  # 一次性检查，YAML 输出
  sysmon check -c config.yaml

  # JSON 输出
  sysmon check -c config.yaml -f json

  # 仅输出报告（便于脚本解析）
  sysmon check -c config.yaml -q`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "yaml", "输出格式 (yaml, json)")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "仅输出报告内容")
}

// runCheck executes the check command logic.
func runCheck(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(GetLogLevel(), "console")
	smp := sampler.New(cfg.Monitoring.DiskPath, logger)
	evaluator := service.NewEvaluator(logger)

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if !checkQuiet {
		fmt.Println("⏳ 采集系统指标...")
	}
	metrics, err := smp.Sample(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("sampling failed")
		fmt.Fprintf(os.Stderr, "❌ 指标采集失败: %v\n", err)
		os.Exit(1)
	}

	events := evaluator.Evaluate(metrics, &cfg.Monitoring)

	report := checkReport{
		Metrics: metrics,
		Alerts:  make([]checkAlert, 0, len(events)),
	}
	for _, e := range events {
		report.Alerts = append(report.Alerts, checkAlert{
			Metric:    string(e.MetricName),
			Value:     e.CurrentValue,
			Threshold: e.ThresholdValue,
			IssueType: e.IssueType(),
			Message:   e.Message(),
		})
	}

	if err := printReport(report, checkFormat); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 报告输出失败: %v\n", err)
		os.Exit(1)
	}

	if len(events) > 0 {
		if !checkQuiet {
			fmt.Fprintf(os.Stderr, "\n⚠️  %d 个指标超过阈值\n", len(events))
		}
		os.Exit(1)
	}
}

// printReport marshals the value in the requested format and writes it
// to stdout.
func printReport(v any, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	return nil
}
