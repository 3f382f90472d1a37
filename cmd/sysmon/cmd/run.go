// Package cmd implements CLI commands for the sysmon agent.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sysmon-agent/internal/client/remediator"
	"sysmon-agent/internal/client/slack"
	"sysmon-agent/internal/config"
	"sysmon-agent/internal/sampler"
	"sysmon-agent/internal/service"
)

// Command flags
var (
	skipProbes bool // Skip the Slack and remediation service startup probes
)

// probeTimeout bounds each startup connectivity probe.
const probeTimeout = 10 * time.Second

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "启动监控代理",
	Long: `启动常驻监控循环，包括：
1. 加载并验证配置文件
2. 探测 Slack 与修复服务连通性
3. 立即执行一次检查，然后按配置间隔周期性检查
4. 超过阈值时发送 Slack 告警并触发自动修复
5. 收到 SIGINT/SIGTERM 后优雅停止并发送停止通知

示例:
  # 使用默认配置启动
  sysmon run -c config.yaml

  # 跳过启动连通性探测
  sysmon run -c config.yaml --skip-probes

  # 调试日志
  sysmon run -c config.yaml --log-level debug`,
	Run: runMonitor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&skipProbes, "skip-probes", false, "跳过启动时的 Slack 和修复服务连通性探测")
}

// runMonitor starts the monitoring loop and blocks until a shutdown signal.
func runMonitor(cmd *cobra.Command, args []string) {
	printBanner()

	// Step 1: Load configuration
	configPath := GetConfigFile()
	fmt.Printf("📋 加载配置文件: %s\n", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", configPath).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// Step 2: Initialize logger with configuration
	// Command line --log-level overrides config file setting
	logLevel := cfg.Logging.Level
	if GetLogLevel() != "info" { // If explicitly set via command line
		logLevel = GetLogLevel()
	}
	logger := setupLogger(logLevel, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", configPath).
		Str("log_level", logLevel).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded successfully")

	// Step 3: Create clients and sampler
	slackClient := slack.NewClient(&cfg.Slack, logger)
	remClient := remediator.NewClient(&cfg.Remediator, &cfg.HTTP.Retry, logger)
	smp := sampler.New(cfg.Monitoring.DiskPath, logger)
	logger.Debug().Msg("clients created")

	// Step 4: Probe external services. Failures are reported but do not
	// abort startup, the agent still monitors and retries on use.
	if !skipProbes {
		fmt.Println("🔗 探测外部服务...")
		probeCtx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		if err := slackClient.AuthTest(probeCtx); err != nil {
			logger.Warn().Err(err).Msg("Slack auth probe failed")
			fmt.Fprintf(os.Stderr, "   ⚠️  Slack 探测失败: %v\n", err)
		} else {
			fmt.Printf("   ✅ Slack: %s\n", cfg.Slack.Channel)
		}
		if err := remClient.Health(probeCtx); err != nil {
			logger.Warn().Err(err).Msg("remediation service probe failed")
			fmt.Fprintf(os.Stderr, "   ⚠️  修复服务探测失败: %v\n", err)
		} else {
			fmt.Printf("   ✅ 修复服务: %s\n", cfg.Remediator.URL)
		}
		cancel()
		fmt.Println()
	}

	// Step 5: Run the monitor until SIGINT/SIGTERM
	monitor := service.NewMonitor(cfg, smp, slackClient, remClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("⏳ 开始监控 (间隔 %s, 阈值 CPU %d%% / 内存 %d%% / 磁盘 %d%%)...\n",
		cfg.Monitoring.CheckInterval,
		cfg.Monitoring.CPUThreshold,
		cfg.Monitoring.MemoryThreshold,
		cfg.Monitoring.DiskThreshold)

	if err := monitor.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("monitor failed")
		fmt.Fprintf(os.Stderr, "❌ 监控启动失败: %v\n", err)
		os.Exit(1)
	}

	// Step 6: Print final statistics
	status := monitor.Status()
	fmt.Println("\n📊 监控已停止")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("   运行时长: %s\n", status.Uptime.Round(time.Second))
	fmt.Printf("   检查次数: %d\n", status.CheckCount)
	fmt.Printf("   告警次数: %d\n", status.AlertCount)
	fmt.Printf("   修复次数: %d\n", status.RemediationCount)
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	// Set log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Select output format based on configuration
	var output io.Writer
	if format == "json" {
		// JSON format - structured logging for log aggregation systems
		output = os.Stderr
	} else {
		// Console format - human-readable output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// printBanner prints the application banner.
func printBanner() {
	fmt.Printf("🤖 系统监控代理 %s\n", Version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}
