// Package remediator provides a client for the remediation backend service.
package remediator

import (
	"errors"
	"fmt"
)

// FaultKind classifies remediation faults. Faults are distinguishable from
// a plain "remediation declined" result, which is reported as a false
// return value without an error.
type FaultKind string

const (
	FaultUnavailable    FaultKind = "unavailable"     // 服务不可用
	FaultTimeout        FaultKind = "timeout"         // 请求超时
	FaultInvalidRequest FaultKind = "invalid_request" // 请求无效
	FaultUnknownIssue   FaultKind = "unknown_issue"   // 未知问题类型
	FaultInternal       FaultKind = "internal"        // 服务内部错误
)

// Fault is a typed remediation failure raised for connectivity, timeout,
// service-unavailable and invalid-request conditions.
type Fault struct {
	Kind       FaultKind // 故障类型
	StatusCode int       // HTTP 状态码（如适用）
	Message    string    // 错误描述
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.StatusCode > 0 {
		return fmt.Sprintf("remediation %s (status %d): %s", f.Kind, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("remediation %s: %s", f.Kind, f.Message)
}

// AsFault extracts a *Fault from an error chain.
func AsFault(err error) (*Fault, bool) {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault, true
	}
	return nil, false
}
