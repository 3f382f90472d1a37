// Package remediator provides a client for the remediation backend service.
package remediator

// ExecuteRequest is the payload sent to the remediation execute endpoint.
type ExecuteRequest struct {
	IssueType string         `json:"issueType"`           // 问题类型（high_cpu 等）
	Context   map[string]any `json:"context"`             // 上下文信息
	Timestamp string         `json:"timestamp,omitempty"` // ISO-8601 时间戳
	Hostname  string         `json:"hostname,omitempty"`  // 主机名
}

// ExecuteResponse is the response body of the execute endpoint.
type ExecuteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ServiceStatus describes the remediation service as reported by its
// status endpoint.
type ServiceStatus struct {
	Status          string   `json:"status"`
	Version         string   `json:"version,omitempty"`
	SupportedIssues []string `json:"supportedIssues,omitempty"`
}
