package errors

import (
	"net/http"
	"strings"
)

// ErrorClassifier turns an opaque error into a PipelineError by pattern
// matching its message and, for HTTP errors, its status code.
type ErrorClassifier struct {
	transientCodes    map[int]bool
	permanentCodes    map[int]bool
	timeoutPatterns   []string
	networkPatterns   []string
	rateLimitPatterns []string
}

func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{
		transientCodes: map[int]bool{
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
		permanentCodes: map[int]bool{
			http.StatusBadRequest:          true,
			http.StatusForbidden:           true,
			http.StatusNotFound:            true,
			http.StatusMethodNotAllowed:    true,
			http.StatusConflict:            true,
			http.StatusUnprocessableEntity: true,
		},
		timeoutPatterns: []string{
			"timeout",
			"deadline exceeded",
			"context canceled",
		},
		networkPatterns: []string{
			"connection refused",
			"no such host",
			"network unreachable",
			"connection reset",
			"broken pipe",
			"connection closed",
		},
		rateLimitPatterns: []string{
			"rate limit",
			"too many requests",
			"quota exceeded",
			"throttled",
		},
	}
}

// Classify returns a PipelineError for any error, already-classified or
// not, so callers never have to substring-match an error string.
func (ec *ErrorClassifier) Classify(err error) *PipelineError {
	if err == nil {
		return nil
	}

	if pErr, ok := err.(*PipelineError); ok {
		return pErr
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case ec.isTimeoutError(errStr):
		return NewError(ErrorTypeTimeout, "OPERATION_TIMEOUT", "operation timed out").
			WithCause(err).
			WithStack().
			Build()
	case ec.isNetworkError(errStr):
		return NewNetworkError("network connectivity issue", err)
	case ec.isRateLimitError(errStr):
		return NewError(ErrorTypeRateLimit, "RATE_LIMIT_EXCEEDED", "rate limit exceeded").
			WithCause(err).
			WithStack().
			Build()
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "token"):
		return NewAuthenticationError(err.Error())
	default:
		return NewError(ErrorTypeTransient, "UNKNOWN", "unknown error occurred").
			WithCause(err).
			WithStatusCode(http.StatusInternalServerError).
			WithStack().
			Build()
	}
}

// ClassifyHTTPError classifies a response by its status code, used by the
// ArXiv client and the remote table client alike.
func (ec *ErrorClassifier) ClassifyHTTPError(statusCode int, body string) *PipelineError {
	switch {
	case statusCode == http.StatusUnauthorized:
		return NewError(ErrorTypeAuth, "AUTHENTICATION_FAILED", "token rejected").
			WithDetail("status_code", statusCode).
			WithDetail("response_body", body).
			WithStatusCode(http.StatusUnauthorized).
			Retryable(false).
			Build()
	case ec.transientCodes[statusCode]:
		return NewError(ErrorTypeTransient, "HTTP_ERROR", "HTTP request failed").
			WithDetail("status_code", statusCode).
			WithDetail("response_body", body).
			WithStatusCode(statusCode).
			Build()
	case ec.permanentCodes[statusCode]:
		return NewError(ErrorTypePermanent, "HTTP_ERROR", "HTTP request failed").
			WithDetail("status_code", statusCode).
			WithDetail("response_body", body).
			WithStatusCode(statusCode).
			Retryable(false).
			Build()
	case statusCode == http.StatusTooManyRequests:
		return NewError(ErrorTypeRateLimit, "HTTP_RATE_LIMIT", "HTTP rate limit exceeded").
			WithDetail("status_code", statusCode).
			WithDetail("response_body", body).
			Build()
	case statusCode == http.StatusRequestTimeout:
		return NewError(ErrorTypeTimeout, "HTTP_TIMEOUT", "HTTP request timed out").
			WithDetail("status_code", statusCode).
			WithDetail("response_body", body).
			Build()
	default:
		return NewError(ErrorTypeTransient, "HTTP_ERROR", "HTTP request failed").
			WithDetail("status_code", statusCode).
			WithDetail("response_body", body).
			WithStatusCode(statusCode).
			Build()
	}
}

func (ec *ErrorClassifier) isTimeoutError(errStr string) bool {
	for _, pattern := range ec.timeoutPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func (ec *ErrorClassifier) isNetworkError(errStr string) bool {
	for _, pattern := range ec.networkPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func (ec *ErrorClassifier) isRateLimitError(errStr string) bool {
	for _, pattern := range ec.rateLimitPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// ClassifyProviderError classifies an ArXiv client error specifically,
// recognizing its documented rate-limit discipline.
func (ec *ErrorClassifier) ClassifyProviderError(provider string, err error) *PipelineError {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429"):
		return NewError(ErrorTypeRateLimit, "ARXIV_RATE_LIMIT", "ArXiv API rate limit exceeded").
			WithComponent(provider + "_provider").
			WithCause(err).
			WithDetail("rate_limit", "1 request per 3 seconds").
			WithStack().
			Build()
	case ec.isTimeoutError(errStr):
		return NewError(ErrorTypeTimeout, "ARXIV_TIMEOUT", "ArXiv API request timed out").
			WithComponent(provider + "_provider").
			WithCause(err).
			WithStack().
			Build()
	case ec.isNetworkError(errStr):
		return NewNetworkError("failed to connect to ArXiv API", err)
	default:
		return NewProviderError(provider, "ArXiv API error", err)
	}
}

// IsTimeoutError checks if an error is a timeout error.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if pErr, ok := err.(*PipelineError); ok {
		return pErr.Type == ErrorTypeTimeout
	}
	return NewErrorClassifier().Classify(err).Type == ErrorTypeTimeout
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if pErr, ok := err.(*PipelineError); ok {
		return pErr.Type == ErrorTypeRateLimit
	}
	return NewErrorClassifier().Classify(err).Type == ErrorTypeRateLimit
}

// IsNetworkError checks if an error is a network error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if pErr, ok := err.(*PipelineError); ok {
		return pErr.Type == ErrorTypeNetwork
	}
	return NewErrorClassifier().Classify(err).Type == ErrorTypeNetwork
}

// IsAuthError checks if an error indicates an expired/rejected token,
// the trigger for the Token Manager's refresh-and-retry-once policy.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if pErr, ok := err.(*PipelineError); ok {
		return pErr.Type == ErrorTypeAuth
	}
	return NewErrorClassifier().Classify(err).Type == ErrorTypeAuth
}
