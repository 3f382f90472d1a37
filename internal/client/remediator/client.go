// Package remediator provides a client for the remediation backend service.
package remediator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"sysmon-agent/internal/config"
)

// Client is a client for the remediation backend API.
type Client struct {
	url        string             // 修复服务地址
	timeout    time.Duration      // 请求超时
	retry      config.RetryConfig // 重试配置
	httpClient *resty.Client      // HTTP client
	logger     zerolog.Logger     // Logger
}

// NewClient creates a new remediation backend client.
func NewClient(cfg *config.RemediatorConfig, retryCfg *config.RetryConfig, logger zerolog.Logger) *Client {
	// Set default timeout if not specified
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	// Set default retry config if not specified
	retry := config.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
	if retryCfg != nil {
		retry = *retryCfg
	}

	// Create resty client
	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8). // Max wait time for exponential backoff
		AddRetryCondition(retryCondition)

	return &Client{
		url:        cfg.URL,
		timeout:    timeout,
		retry:      retry,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "remediator-client").Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only retry on timeout, 5xx errors, or connection failures.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	// Retry on error (timeout, connection failure, etc.)
	if err != nil {
		return true
	}

	// Retry on 5xx server errors
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}

	// Do not retry on 4xx client errors
	return false
}

// Remediate asks the backend to act on the given issue type. It returns
// true on a confirmed success, false without an error when the backend
// declined the request, and a *Fault for connectivity, timeout and
// HTTP-level failures.
func (c *Client) Remediate(ctx context.Context, issueType string, rctx map[string]any) (bool, error) {
	payload := ExecuteRequest{
		IssueType: issueType,
		Context:   rctx,
	}
	// Mirror context hostname/timestamp at the top level of the payload,
	// which is what the backend indexes on.
	if ts, ok := rctx["timestamp"].(string); ok {
		payload.Timestamp = ts
	}
	if hn, ok := rctx["hostname"].(string); ok {
		payload.Hostname = hn
	}

	c.logger.Info().Str("issue_type", issueType).Msg("triggering remediation")
	c.logger.Debug().Interface("payload", payload).Msg("remediation request payload")

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/api/remediation/execute")

	if err != nil {
		return false, classifyTransportError("execute", err)
	}

	if resp.IsError() {
		return false, classifyStatusError(issueType, resp.StatusCode(), string(resp.Body()))
	}

	// A 2xx body without parseable JSON counts as success; the backend is
	// free to respond with plain text.
	var result ExecuteResponse
	if jsonErr := json.Unmarshal(resp.Body(), &result); jsonErr != nil {
		c.logger.Info().Str("issue_type", issueType).Msg("remediation accepted")
		return true, nil
	}

	if !result.Success {
		c.logger.Warn().
			Str("issue_type", issueType).
			Str("message", result.Message).
			Msg("remediation declined by backend")
		return false, nil
	}

	c.logger.Info().Str("issue_type", issueType).Str("message", result.Message).Msg("remediation successful")
	return true, nil
}

// Health probes the backend health endpoint. A non-nil error means the
// service is unreachable or unhealthy.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/health")

	if err != nil {
		return classifyTransportError("health", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return &Fault{
			Kind:       FaultUnavailable,
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("health endpoint returned status %d", resp.StatusCode()),
		}
	}

	return nil
}

// ServiceStatus retrieves the backend's self-reported status.
func (c *Client) ServiceStatus(ctx context.Context) (*ServiceStatus, error) {
	var status ServiceStatus

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&status).
		Get("/api/remediation/status")

	if err != nil {
		return nil, classifyTransportError("status", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &Fault{
			Kind:       FaultUnavailable,
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("status endpoint returned status %d", resp.StatusCode()),
		}
	}

	return &status, nil
}

// classifyTransportError maps a transport-level error to a Fault.
func classifyTransportError(operation string, err error) *Fault {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Fault{
			Kind:    FaultTimeout,
			Message: fmt.Sprintf("%s request timed out: %v", operation, err),
		}
	}

	return &Fault{
		Kind:    FaultUnavailable,
		Message: fmt.Sprintf("could not connect to remediation service: %v", err),
	}
}

// classifyStatusError maps a non-2xx response to a Fault.
func classifyStatusError(issueType string, statusCode int, body string) *Fault {
	switch statusCode {
	case http.StatusBadRequest:
		return &Fault{Kind: FaultInvalidRequest, StatusCode: statusCode, Message: "invalid remediation request"}
	case http.StatusNotFound:
		return &Fault{Kind: FaultUnknownIssue, StatusCode: statusCode, Message: fmt.Sprintf("unknown issue type: %s", issueType)}
	case http.StatusServiceUnavailable:
		return &Fault{Kind: FaultUnavailable, StatusCode: statusCode, Message: "remediation service temporarily unavailable"}
	default:
		return &Fault{Kind: FaultInternal, StatusCode: statusCode, Message: fmt.Sprintf("unexpected status %d: %s", statusCode, body)}
	}
}
