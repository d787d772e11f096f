package errors

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorType categorizes an error by how the caller should react to it,
// mapped onto the six error kinds of the pipeline's error-handling design:
// transient upstream failures, expired auth, bad records, invalid
// configuration, rejected writes, and notification failures.
type ErrorType string

const (
	// ErrorTypeTransient is a retry-with-backoff error: network timeout,
	// 5xx, connection reset. Ultimately skipped at the smallest unit of
	// work (one sub-window for acquisition, one batch for sync).
	ErrorTypeTransient ErrorType = "transient"

	// ErrorTypePermanent is never retried. It marks invalid configuration
	// (which aborts the pipeline before any external call), exhausted
	// retries, and non-retryable 4xx responses.
	ErrorTypePermanent ErrorType = "permanent"

	// ErrorTypeCircuitBreaker signals a tripped breaker around an
	// outbound dependency.
	ErrorTypeCircuitBreaker ErrorType = "circuit_breaker"

	// ErrorTypeRateLimit is a specific backoff strategy driven by a
	// server-supplied retry-after.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeAuth triggers a token refresh and exactly one retry.
	ErrorTypeAuth ErrorType = "authentication"

	// ErrorTypeValidation is a bad record: parse failure, missing
	// paper_id. Dropped with a warning, never abortive.
	ErrorTypeValidation ErrorType = "validation"

	ErrorTypeTimeout ErrorType = "timeout"
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeResource ErrorType = "resource"
)

// PipelineError is a structured error carrying enough context for the
// retry executor, the circuit breaker, and the structured logger to act
// on it without string-matching the message.
type PipelineError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Stack      string                 `json:"stack,omitempty"`
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	Timestamp  time.Time              `json:"timestamp"`
	RequestID  string                 `json:"request_id,omitempty"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Code, e.Message)
}

func (e *PipelineError) Is(target error) bool {
	if t, ok := target.(*PipelineError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func (e *PipelineError) String() string {
	return e.Error()
}

// HTTPStatus maps the error to an HTTP status code: StatusCode when set,
// otherwise a code derived from the error type.
func (e *PipelineError) HTTPStatus() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeAuth:
		return http.StatusUnauthorized
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeTimeout:
		return http.StatusRequestTimeout
	case ErrorTypeNetwork, ErrorTypeTransient, ErrorTypeCircuitBreaker:
		return http.StatusServiceUnavailable
	case ErrorTypeResource:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBuilder assembles a PipelineError field by field.
type ErrorBuilder struct {
	err *PipelineError
}

func NewError(errorType ErrorType, code, message string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &PipelineError{
			Type:      errorType,
			Code:      code,
			Message:   message,
			Details:   make(map[string]interface{}),
			Timestamp: time.Now(),
			Retryable: errorType == ErrorTypeTransient || errorType == ErrorTypeTimeout || errorType == ErrorTypeNetwork,
		},
	}
}

func (b *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	b.err.Cause = cause
	return b
}

func (b *ErrorBuilder) WithComponent(component string) *ErrorBuilder {
	b.err.Component = component
	return b
}

func (b *ErrorBuilder) WithOperation(operation string) *ErrorBuilder {
	b.err.Operation = operation
	return b
}

func (b *ErrorBuilder) WithDetail(key string, value interface{}) *ErrorBuilder {
	b.err.Details[key] = value
	return b
}

func (b *ErrorBuilder) WithDetails(details map[string]interface{}) *ErrorBuilder {
	for k, v := range details {
		b.err.Details[k] = v
	}
	return b
}

func (b *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	b.err.RequestID = requestID
	return b
}

func (b *ErrorBuilder) WithStatusCode(statusCode int) *ErrorBuilder {
	b.err.StatusCode = statusCode
	return b
}

func (b *ErrorBuilder) WithStack() *ErrorBuilder {
	b.err.Stack = captureStack()
	return b
}

func (b *ErrorBuilder) Retryable(retryable bool) *ErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *ErrorBuilder) Build() *PipelineError {
	return b.err
}

// Predefined constructors, one per error kind the pipeline raises.

func NewValidationError(message string, field string, value interface{}) *PipelineError {
	return NewError(ErrorTypeValidation, "VALIDATION_ERROR", message).
		WithDetail("field", field).
		WithDetail("rejected_value", value).
		WithStatusCode(http.StatusBadRequest).
		Retryable(false).
		Build()
}

func NewConfigError(message string, field string) *PipelineError {
	return NewError(ErrorTypePermanent, "CONFIG_INVALID", message).
		WithDetail("field", field).
		WithStatusCode(http.StatusInternalServerError).
		Retryable(false).
		Build()
}

func NewAuthenticationError(message string) *PipelineError {
	return NewError(ErrorTypeAuth, "AUTHENTICATION_FAILED", message).
		WithStatusCode(http.StatusUnauthorized).
		Retryable(false).
		Build()
}

func NewNetworkError(message string, cause error) *PipelineError {
	return NewError(ErrorTypeNetwork, "NETWORK_ERROR", message).
		WithCause(cause).
		WithStatusCode(http.StatusServiceUnavailable).
		Build()
}

func NewCircuitBreakerError(service string) *PipelineError {
	return NewError(ErrorTypeCircuitBreaker, "CIRCUIT_OPEN", fmt.Sprintf("circuit breaker open for %s", service)).
		WithDetail("service", service).
		WithStatusCode(http.StatusServiceUnavailable).
		Build()
}

func NewProviderError(provider string, message string, cause error) *PipelineError {
	return NewError(ErrorTypeTransient, "PROVIDER_ERROR", message).
		WithComponent(fmt.Sprintf("%s_provider", provider)).
		WithCause(cause).
		WithDetail("provider", provider).
		WithStatusCode(http.StatusServiceUnavailable).
		Build()
}

func NewUpstreamWriteError(service string, message string, cause error) *PipelineError {
	return NewError(ErrorTypeTransient, "UPSTREAM_WRITE_REJECTED", message).
		WithComponent(service).
		WithCause(cause).
		WithStatusCode(http.StatusBadGateway).
		Build()
}

func NewCacheError(message string, cause error) *PipelineError {
	return NewError(ErrorTypeTransient, "CACHE_ERROR", message).
		WithComponent("cache").
		WithCause(cause).
		WithStatusCode(http.StatusServiceUnavailable).
		Build()
}

func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var buf strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}

	return buf.String()
}

