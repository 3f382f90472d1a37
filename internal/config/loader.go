// Package config provides configuration management for the monitoring agent.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: SYSMON_<SECTION>_<KEY> (e.g., SYSMON_SLACK_TOKEN).
// The Slack token is additionally bound to SLACK_BOT_TOKEN for compatibility
// with standard Slack deployments.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("SYSMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("slack.token", "SYSMON_SLACK_TOKEN", "SLACK_BOT_TOKEN")

	// Check if config file exists
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Set config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Monitoring defaults
	v.SetDefault("monitoring.cpu_threshold", 90)
	v.SetDefault("monitoring.memory_threshold", 90)
	v.SetDefault("monitoring.disk_threshold", 90)
	v.SetDefault("monitoring.check_interval", 60*time.Second)
	v.SetDefault("monitoring.disk_path", "/")

	// Slack defaults
	v.SetDefault("slack.username", "SysMon")
	v.SetDefault("slack.icon_emoji", ":robot_face:")
	v.SetDefault("slack.api_url", "https://slack.com/api")
	v.SetDefault("slack.timeout", 10*time.Second)

	// Remediator defaults
	v.SetDefault("remediator.timeout", 30*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)
}
