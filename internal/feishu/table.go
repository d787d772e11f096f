package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"arxivsync/internal/errors"
)

// defaultListPageSize is used by ListRecords when the caller doesn't
// specify one.
const defaultListPageSize = 100

// TableClient is the thin, retry-aware HTTP layer over the remote bitable
// and chat API. Retries up to 3 attempts with fixed backoff on transport
// errors; on an HTTP 401 response it refreshes via the token manager and
// retries exactly once. A non-zero business code in the response envelope
// is never treated as token expiry: it surfaces as-is, without a retry.
type TableClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
	retry      *errors.RetryExecutor
	logger     *slog.Logger
}

// NewTableClient builds a client bound to one downstream base URL and
// token manager.
func NewTableClient(baseURL string, tokens *TokenManager, logger *slog.Logger) *TableClient {
	classifier := errors.NewErrorClassifier()
	retry := errors.NewRetryExecutor(errors.RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		BackoffFactor:   1.0,
		Jitter:          false,
		RetryableErrors: []errors.ErrorType{errors.ErrorTypeTransient, errors.ErrorTypeTimeout, errors.ErrorTypeNetwork},
	}, classifier, logger)

	return &TableClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		retry:      retry,
		logger:     logger,
	}
}

// Table describes one bitable child table.
type Table struct {
	ID   string `json:"table_id"`
	Name string `json:"name"`
}

type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// ListTables returns every child table of a base.
func (c *TableClient) ListTables(ctx context.Context, base string) ([]Table, error) {
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables", base)
	var out struct {
		Items []Table `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// FindTableByName looks up a table by name over ListTables.
func (c *TableClient) FindTableByName(ctx context.Context, base, name string) (Table, bool, error) {
	tables, err := c.ListTables(ctx, base)
	if err != nil {
		return Table{}, false, err
	}
	for _, t := range tables {
		if t.Name == name {
			return t, true, nil
		}
	}
	return Table{}, false, nil
}

// FieldSchema describes one column of the typed papers table.
type FieldSchema struct {
	FieldName string `json:"field_name"`
	Type      int    `json:"type"`
}

// CreatePapersTable creates a typed table with the given field schema.
func (c *TableClient) CreatePapersTable(ctx context.Context, base, name string, fields []FieldSchema) (Table, error) {
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables", base)
	body := map[string]interface{}{
		"table": map[string]interface{}{
			"name":   name,
			"fields": fields,
		},
	}
	var out struct {
		TableID string `json:"table_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return Table{}, err
	}
	return Table{ID: out.TableID, Name: name}, nil
}

// Record is one row of fields, keyed by field name.
type Record struct {
	RecordID string                 `json:"record_id,omitempty"`
	Fields   map[string]interface{} `json:"fields"`
}

// ListRecords paginates through every record of a table, following
// page_token until the API reports no more pages.
func (c *TableClient) ListRecords(ctx context.Context, base, table string, pageSize int) ([]Record, error) {
	if pageSize <= 0 {
		pageSize = defaultListPageSize
	}

	var all []Record
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("page_size", fmt.Sprintf("%d", pageSize))
		if pageToken != "" {
			params.Set("page_token", pageToken)
		}
		path := fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records?%s", base, table, params.Encode())

		var out struct {
			Items     []Record `json:"items"`
			HasMore   bool     `json:"has_more"`
			PageToken string   `json:"page_token"`
		}
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
			return nil, err
		}
		all = append(all, out.Items...)
		if !out.HasMore || out.PageToken == "" {
			break
		}
		pageToken = out.PageToken
	}
	return all, nil
}

// InsertResult reports the outcome of one row within a batch insert.
type InsertResult struct {
	Record  Record
	Skipped bool
	Err     error
}

// InsertRecord inserts a single row.
func (c *TableClient) InsertRecord(ctx context.Context, base, table string, fields map[string]interface{}) (Record, error) {
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records", base, table)
	var out Record
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]interface{}{"fields": fields}, &out); err != nil {
		return Record{}, err
	}
	return out, nil
}

// BatchInsert inserts up to batch_size rows in one call. It returns one
// InsertResult per record the API reports as created; Skipped and Err are
// not set, and rows the API did not create are not reported individually.
func (c *TableClient) BatchInsert(ctx context.Context, base, table string, rows []map[string]interface{}) ([]InsertResult, error) {
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records/batch_create", base, table)
	body := map[string]interface{}{"records": recordBodies(rows)}

	var out struct {
		Records []Record `json:"records"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}

	results := make([]InsertResult, len(out.Records))
	for i, r := range out.Records {
		results[i] = InsertResult{Record: r}
	}
	return results, nil
}

func recordBodies(rows []map[string]interface{}) []map[string]interface{} {
	bodies := make([]map[string]interface{}, len(rows))
	for i, fields := range rows {
		bodies[i] = map[string]interface{}{"fields": fields}
	}
	return bodies
}

// UpdateRecord applies a field-level update to an existing row.
func (c *TableClient) UpdateRecord(ctx context.Context, base, table, recordID string, fields map[string]interface{}) error {
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records/%s", base, table, recordID)
	return c.doJSON(ctx, http.MethodPut, path, map[string]interface{}{"fields": fields}, nil)
}

// Chat describes one chat the bot belongs to.
type Chat struct {
	ChatID string `json:"chat_id"`
	Name   string `json:"name"`
}

// ListChats enumerates every chat the bot is a member of.
func (c *TableClient) ListChats(ctx context.Context) ([]Chat, error) {
	path := fmt.Sprintf("/im/v1/chats?page_size=%d&membership=member", defaultListPageSize)
	var out struct {
		Items []Chat `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SendMessage posts content to one chat.
func (c *TableClient) SendMessage(ctx context.Context, chatID, msgType, content string) error {
	path := "/im/v1/messages?receive_id_type=chat_id"
	body := map[string]interface{}{
		"receive_id": chatID,
		"msg_type":   msgType,
		"content":    content,
	}
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

// doJSON performs one request-response round trip against the bitable/im
// API, refreshing the token and retrying exactly once on auth expiry.
func (c *TableClient) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	refreshed := false

	return c.retry.Execute(ctx, "feishu_"+method+"_"+path, func() error {
		token, err := c.tokens.Get(ctx)
		if err != nil {
			return err
		}

		envelope, err := c.request(ctx, method, path, body, token)
		if err != nil {
			if errors.IsAuthError(err) && !refreshed {
				refreshed = true
				if _, refreshErr := c.tokens.ForceRefresh(ctx); refreshErr != nil {
					return refreshErr
				}
				return errors.NewError(errors.ErrorTypeTransient, "TOKEN_REFRESHED", "retrying after token refresh").
					WithCause(err).
					Build()
			}
			return err
		}

		if envelope.Code != 0 {
			werr := errors.NewUpstreamWriteError("feishu", envelope.Msg, nil)
			werr.Retryable = false
			return werr
		}
		if out != nil && len(envelope.Data) > 0 {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				return fmt.Errorf("decode %s response: %w", path, err)
			}
		}
		return nil
	})
}

func (c *TableClient) request(ctx context.Context, method, path string, body interface{}, token string) (apiEnvelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apiEnvelope{}, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apiEnvelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiEnvelope{}, errors.NewNetworkError("feishu request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiEnvelope{}, errors.NewNetworkError("reading feishu response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return apiEnvelope{}, errors.NewAuthenticationError("feishu token expired")
	}
	if resp.StatusCode != http.StatusOK {
		return apiEnvelope{}, errors.NewErrorClassifier().ClassifyHTTPError(resp.StatusCode, string(raw))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apiEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return envelope, nil
}
