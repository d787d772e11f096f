// Package feishu implements the bearer-token lifecycle and the thin
// retry-aware HTTP layer over the remote bitable/chat API.
package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"arxivsync/internal/cache"
	"arxivsync/internal/errors"
)

// tokenSafetyMargin is subtracted from the declared expiry so a refresh
// happens before the downstream API would actually reject the token.
const tokenSafetyMargin = 5 * time.Minute

const tokenCacheKey = "feishu:tenant_access_token"

// TokenManager obtains and caches a bearer token for the remote table API.
// A directly supplied user token is used as-is and never refreshed; app
// credentials are exchanged for a tenant access token that is cached with
// a safety margin and refreshed under a single-flight lock so concurrent
// callers witness at most one in-flight refresh.
type TokenManager struct {
	httpClient *http.Client
	store      cache.Store
	logger     *slog.Logger

	baseURL    string
	appID      string
	appSecret  string
	userToken  string

	mu       sync.Mutex
	inFlight chan struct{}
}

type tokenCachePayload struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// NewTokenManager builds a manager bound to one credential set. If
// userToken is non-empty, app credentials are ignored entirely.
func NewTokenManager(baseURL, appID, appSecret, userToken string, store cache.Store, logger *slog.Logger) *TokenManager {
	return &TokenManager{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		logger:     logger,
		baseURL:    baseURL,
		appID:      appID,
		appSecret:  appSecret,
		userToken:  userToken,
	}
}

// Get returns a valid bearer token, refreshing it if necessary. Never
// blocks longer than one network round-trip beyond whatever concurrent
// refresh it may need to wait on.
func (m *TokenManager) Get(ctx context.Context) (string, error) {
	if m.userToken != "" {
		return m.userToken, nil
	}

	if cached, ok, err := m.readCache(ctx); err == nil && ok {
		return cached.Token, nil
	}

	return m.refresh(ctx)
}

// ForceRefresh invalidates the cache and obtains a fresh token, used on
// the first 401 the table client observes.
func (m *TokenManager) ForceRefresh(ctx context.Context) (string, error) {
	if m.userToken != "" {
		return m.userToken, nil
	}
	_ = m.store.Delete(ctx, tokenCacheKey)
	return m.refresh(ctx)
}

func (m *TokenManager) readCache(ctx context.Context) (tokenCachePayload, bool, error) {
	raw, ok, err := m.store.Get(ctx, tokenCacheKey)
	if err != nil || !ok {
		return tokenCachePayload{}, false, err
	}
	var payload tokenCachePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return tokenCachePayload{}, false, nil
	}
	if time.Now().After(payload.Expires.Add(-tokenSafetyMargin)) {
		return tokenCachePayload{}, false, nil
	}
	return payload, true, nil
}

// refresh performs the single-flight app-credential exchange: the first
// caller does the network round-trip, later concurrent callers wait on
// the same in-flight channel and then re-read the cache.
func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.inFlight != nil {
		wait := m.inFlight
		m.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if cached, ok, _ := m.readCache(ctx); ok {
			return cached.Token, nil
		}
		return "", errors.NewAuthenticationError("token refresh in progress by another caller failed")
	}
	done := make(chan struct{})
	m.inFlight = done
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = nil
		m.mu.Unlock()
		close(done)
	}()

	token, expires, err := m.exchangeAppCredentials(ctx)
	if err != nil {
		return "", err
	}

	payload, _ := json.Marshal(tokenCachePayload{Token: token, Expires: expires})
	if err := m.store.Put(ctx, tokenCacheKey, payload, time.Until(expires)); err != nil {
		m.logger.Warn("feishu: failed to cache token", slog.String("error", err.Error()))
	}
	return token, nil
}

type tokenExchangeResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

func (m *TokenManager) exchangeAppCredentials(ctx context.Context) (string, time.Time, error) {
	body := strings.NewReader(fmt.Sprintf(`{"app_id":%q,"app_secret":%q}`, m.appID, m.appSecret))
	url := m.baseURL + "/auth/v3/tenant_access_token/internal"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, errors.NewNetworkError("token exchange request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, errors.NewNetworkError("reading token exchange response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, errors.NewErrorClassifier().ClassifyHTTPError(resp.StatusCode, string(raw))
	}

	var parsed tokenExchangeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", time.Time{}, fmt.Errorf("decode token exchange response: %w", err)
	}
	if parsed.Code != 0 {
		return "", time.Time{}, errors.NewAuthenticationError(fmt.Sprintf("token exchange rejected: %s", parsed.Msg))
	}

	expires := time.Now().Add(time.Duration(parsed.Expire) * time.Second)
	return parsed.TenantAccessToken, expires, nil
}
