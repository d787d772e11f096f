package acquisition

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"arxivsync/internal/errors"
	"arxivsync/internal/models"
)

const userAgent = "arxivsync/1.0"

// client is the thin, retry-aware HTTP layer over the ArXiv Atom
// endpoint. It owns the single minimum-inter-request-delay discipline
// every page fetch (regardless of which sub-window issued it) must obey.
type client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	retry      *errors.RetryExecutor
	breaker    *errors.CircuitBreaker

	mu       sync.Mutex
	lastSent time.Time
}

func newClient(cfg Config, logger *slog.Logger) *client {
	classifier := errors.NewErrorClassifier()
	retry := errors.NewRetryExecutor(errors.RetryConfig{
		MaxAttempts:     cfg.MaxRetries + 1,
		InitialDelay:    cfg.MinRequestInterval,
		MaxDelay:        cfg.MinRequestInterval * time.Duration(cfg.MaxRetries+1),
		BackoffFactor:   1.0,
		Jitter:          false,
		RetryableErrors: []errors.ErrorType{errors.ErrorTypeTransient, errors.ErrorTypeTimeout, errors.ErrorTypeNetwork},
	}, classifier, logger)

	breaker := errors.NewCircuitBreaker(errors.CircuitBreakerConfig{
		Name:                "arxiv_acquisition",
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		MaxRequests:         1,
		ExpectedFailureRate: 0.5,
		MinRequestCount:     5,
		SlidingWindow:       time.Minute,
	}, logger)

	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
		retry:      retry,
		breaker:    breaker,
	}
}

// fetchPage performs one paginated request with the minimum inter-request
// delay enforced, the retry policy applied, and the body parsed into
// Papers. A non-nil error means the retry budget was exhausted; the
// caller decides whether that ends the sub-window or the page-size
// attempt.
func (c *client) fetchPage(ctx context.Context, searchQuery string, start, maxResults int) ([]models.Paper, []error, error) {
	c.throttle(ctx)

	var body []byte
	err := c.retry.Execute(ctx, "arxiv_fetch_page", func() error {
		return c.breaker.Execute(func() error {
			b, reqErr := c.doRequest(ctx, searchQuery, start, maxResults)
			if reqErr != nil {
				return reqErr
			}
			body = b
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}

	papers, dropped := parseFeed(body)
	return papers, dropped, nil
}

// throttle blocks until MinRequestInterval has elapsed since the last
// request this client issued, regardless of which sub-window is calling.
func (c *client) throttle(ctx context.Context) {
	c.mu.Lock()
	wait := time.Until(c.lastSent.Add(c.cfg.MinRequestInterval))
	c.mu.Unlock()

	if wait > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
	}

	c.mu.Lock()
	c.lastSent = time.Now()
	c.mu.Unlock()
}

func (c *client) doRequest(ctx context.Context, searchQuery string, start, maxResults int) ([]byte, error) {
	params := url.Values{}
	params.Set("search_query", searchQuery)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	reqURL := c.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("arxiv request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError("reading arxiv response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewErrorClassifier().ClassifyHTTPError(resp.StatusCode, string(body))
	}

	return body, nil
}
