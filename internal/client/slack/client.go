// Package slack provides a client for Slack chat notifications.
package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"sysmon-agent/internal/config"
	"sysmon-agent/internal/model"
)

// defaultAPIURL is the official Slack API base URL.
const defaultAPIURL = "https://slack.com/api"

// severityEmoji maps notification severity to its visual marker.
var severityEmoji = map[model.Severity]string{
	model.SeverityInfo:     "ℹ️",
	model.SeverityWarning:  "⚠️",
	model.SeverityError:    "❌",
	model.SeverityCritical: "🚨",
	model.SeveritySuccess:  "✅",
}

// fallbackEmoji is used for severities outside the known set.
const fallbackEmoji = "📢"

// Client sends severity-tagged text messages to a Slack channel.
// Notification requests are never retried; delivery is best effort.
type Client struct {
	channel    string         // 通知频道
	username   string         // 机器人显示名称
	iconEmoji  string         // 机器人图标
	httpClient *resty.Client  // HTTP client
	logger     zerolog.Logger // Logger
}

// NewClient creates a new Slack notification client.
func NewClient(cfg *config.SlackConfig, logger zerolog.Logger) *Client {
	// Set default timeout if not specified
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	httpClient := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json")

	return &Client{
		channel:    cfg.Channel,
		username:   cfg.Username,
		iconEmoji:  cfg.IconEmoji,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "slack-client").Logger(),
	}
}

// Notify sends a message with the given severity to the configured channel.
// An empty or whitespace-only message returns false without attempting
// delivery. The severity is rendered as an emoji prefix.
func (c *Client) Notify(ctx context.Context, message string, severity model.Severity) (bool, error) {
	if strings.TrimSpace(message) == "" {
		c.logger.Warn().Msg("attempted to send empty message")
		return false, nil
	}

	emoji, ok := severityEmoji[severity]
	if !ok {
		emoji = fallbackEmoji
	}

	payload := postMessageRequest{
		Channel:   c.channel,
		Text:      emoji + " " + message,
		Username:  c.username,
		IconEmoji: c.iconEmoji,
	}

	var result apiResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post("/chat.postMessage")

	if err != nil {
		return false, fmt.Errorf("failed to send slack message: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("slack API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	if !result.OK {
		c.logger.Error().Str("api_error", result.Error).Msg("slack API rejected message")
		return false, fmt.Errorf("slack API error: %s", result.Error)
	}

	c.logger.Debug().
		Str("channel", c.channel).
		Str("severity", string(severity)).
		Msg("message sent")

	return true, nil
}

// AuthTest verifies the configured token against the auth.test endpoint.
// Called once at startup; a failure here is a configuration problem.
func (c *Client) AuthTest(ctx context.Context) error {
	var result authTestResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Post("/auth.test")

	if err != nil {
		return fmt.Errorf("slack auth test failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("slack auth test returned status %d", resp.StatusCode())
	}

	if !result.OK {
		return fmt.Errorf("slack authentication failed: %s", result.Error)
	}

	c.logger.Info().
		Str("user", result.User).
		Str("team", result.Team).
		Msg("authenticated with slack")

	return nil
}
