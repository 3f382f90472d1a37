// Package cmd implements CLI commands for the sysmon agent.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sysmon-agent/internal/client/remediator"
	"sysmon-agent/internal/config"
	"sysmon-agent/internal/sampler"
	"sysmon-agent/internal/service"
)

// Command flags
var (
	healthFormat         string // Output format (yaml, json)
	healthSkipRemediator bool   // Skip the remediation service probe
)

// healthTimeout bounds the one-shot health check run.
const healthTimeout = 30 * time.Second

// healthCmd represents the health command.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "执行健康检查",
	Long: `并发探测本机资源与修复服务，输出各子系统健康状态。
资源使用率超过 90% 的子系统判定为不健康。

退出码: 0 表示全部健康，1 表示存在不健康子系统。

示例:
  # 完整健康检查
  sysmon health -c config.yaml

  # 跳过修复服务探测
  sysmon health -c config.yaml --skip-remediator

  # JSON 输出
  sysmon health -c config.yaml -f json`,
	Run: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().StringVarP(&healthFormat, "format", "f", "yaml", "输出格式 (yaml, json)")
	healthCmd.Flags().BoolVar(&healthSkipRemediator, "skip-remediator", false, "跳过修复服务探测")
}

// runHealth executes the health command logic.
func runHealth(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(GetLogLevel(), "console")
	smp := sampler.New(cfg.Monitoring.DiskPath, logger)

	var prober service.ServiceProber
	if !healthSkipRemediator {
		prober = remediator.NewClient(&cfg.Remediator, &cfg.HTTP.Retry, logger)
	}
	checker := service.NewHealthChecker(smp, prober, logger)

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	result := checker.Check(ctx)

	if err := printReport(result, healthFormat); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 报告输出失败: %v\n", err)
		os.Exit(1)
	}

	if !result.Healthy {
		os.Exit(1)
	}
}
