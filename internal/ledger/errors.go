package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind 校验问题类型
type ErrorKind string

const (
	KindMissingField      ErrorKind = "missing_field"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindCapacityExceeded  ErrorKind = "capacity_exceeded"
	KindLargeVariance     ErrorKind = "large_variance" // 仅提示，不阻止保存
	KindBackendFailure    ErrorKind = "backend_failure"
)

// ErrUnknownPump 加油机编号超出范围
var ErrUnknownPump = errors.New("unknown pump")

// Issue 单个校验问题
type Issue struct {
	Kind   ErrorKind `json:"kind"`
	Field  string    `json:"field,omitempty"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
	}
	return fmt.Sprintf("%s (%s): %s", i.Kind, i.Field, i.Detail)
}

// ValidationError 阻止保存的校验错误，一次列出全部问题
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	details := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		details = append(details, issue.Detail)
	}
	return "validation failed: " + strings.Join(details, "; ")
}

// Has 是否包含某类问题
func (e *ValidationError) Has(kind ErrorKind) bool {
	for _, issue := range e.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

// AsValidation 提取 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Fail 构造单个问题的校验错误
func Fail(kind ErrorKind, field, format string, args ...interface{}) error {
	return &ValidationError{Issues: []Issue{{Kind: kind, Field: field, Detail: fmt.Sprintf(format, args...)}}}
}

// issueList 收集问题
type issueList []Issue

func (l *issueList) add(kind ErrorKind, field, format string, args ...interface{}) {
	*l = append(*l, Issue{Kind: kind, Field: field, Detail: fmt.Sprintf(format, args...)})
}

func (l issueList) err() error {
	if len(l) == 0 {
		return nil
	}
	return &ValidationError{Issues: l}
}
