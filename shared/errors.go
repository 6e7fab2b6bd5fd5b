package shared

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur in the
// ingestion pipeline
type ErrorCategory string

const (
	ErrorCategoryConfiguration  ErrorCategory = "configuration"
	ErrorCategoryNetwork        ErrorCategory = "network"
	ErrorCategoryDatabase       ErrorCategory = "database"
	ErrorCategoryBlocked        ErrorCategory = "blocked"
	ErrorCategoryParsing        ErrorCategory = "parsing"
	ErrorCategoryTimeout        ErrorCategory = "timeout"
	ErrorCategoryAuthentication ErrorCategory = "authentication"
)

// Sentinel errors for expected pipeline outcomes. Adapters and the store
// gateway return these instead of raising arbitrary failures upward.
var (
	// ErrSourceBlocked indicates the source rejected the request (HTTP
	// 403/429, an explicit block page, or an auth rejection). Not retried
	// within a run.
	ErrSourceBlocked = errors.New("source blocked the request")

	// ErrAuthUnavailable indicates the session provider could not supply
	// an authenticated session for the social platform.
	ErrAuthUnavailable = errors.New("authenticated session unavailable")

	// ErrRequestBudgetExhausted indicates a run hit its per-run network
	// request cap. The run truncates rather than failing.
	ErrRequestBudgetExhausted = errors.New("request budget exhausted for this run")
)

// ServiceError is a standardized error with pipeline context
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	Timestamp   time.Time     `json:"timestamp"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Retryable   bool          `json:"retryable"`
	Cause       error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, retryable bool, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		ServiceName: serviceName,
		Operation:   operation,
		Retryable:   retryable,
		Cause:       cause,
	}
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"service_name":     e.ServiceName,
		"operation":        e.Operation,
		"retryable":        e.Retryable,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}

// WrapError wraps an existing error with service error context
func WrapError(err error, category ErrorCategory, code, serviceName, operation string, retryable bool) *ServiceError {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		serviceErr.ServiceName = serviceName
		serviceErr.Operation = operation
		return serviceErr
	}

	return NewServiceError(category, code, err.Error(), serviceName, operation, retryable, err)
}

// IsBlockedError reports whether an error marks a source block rather than a
// transient failure
func IsBlockedError(err error) bool {
	return errors.Is(err, ErrSourceBlocked) || errors.Is(err, ErrAuthUnavailable)
}

// IsRetryableError checks if an error is worth retrying within the same run
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if IsBlockedError(err) || errors.Is(err, ErrRequestBudgetExhausted) {
		return false
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Retryable
	}

	// Default heuristics for standard errors
	errorMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout", "connection refused", "connection reset",
		"temporary failure", "service unavailable",
		"network", "dns", "socket",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errorMsg, pattern) {
			return true
		}
	}

	return false
}
