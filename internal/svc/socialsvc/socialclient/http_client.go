package socialclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mkrupp/socialsvc/internal/domain"
	context_ "github.com/mkrupp/socialsvc/internal/infra/context"
	"github.com/mkrupp/socialsvc/internal/infra/logging"
	http_ "github.com/mkrupp/socialsvc/internal/infra/transport/http"
)

// StatusError is returned for every non-2xx answer and carries the decoded error body.
type StatusError struct {
	domain.APIError
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 if it is not a StatusError.
func StatusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}

	return 0
}

// HTTPClientConfig holds configuration for the HTTP client.
type HTTPClientConfig struct {
	// BaseURL is the root of the social media API
	BaseURL string `env:"BASE_URL" default:"http://localhost:8080"`
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
	log logging.Logger,
) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &HTTPClient{
		httpClient: httpClient,
		log:        log,
		cfg:        cfg,
	}
}

// Register implements Client.Register.
func (c *HTTPClient) Register(ctx context.Context, username, password string) (*domain.Account, error) {
	var acc domain.Account
	if _, err := c.do(ctx, http.MethodPost, "/register", domain.NewAccountCandidate(username, password), &acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

// Login implements Client.Login.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*domain.Account, error) {
	var acc domain.Account
	if _, err := c.do(ctx, http.MethodPost, "/login", domain.NewAccountCandidate(username, password), &acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

// PostMessage implements Client.PostMessage.
func (c *HTTPClient) PostMessage(ctx context.Context, text string, postedBy int64) (*domain.Message, error) {
	var msg domain.Message
	if _, err := c.do(ctx, http.MethodPost, "/messages", domain.NewMessageCandidate(text, postedBy), &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}

// GetMessage implements Client.GetMessage.
func (c *HTTPClient) GetMessage(ctx context.Context, id int64) (*domain.Message, bool, error) {
	var msg domain.Message

	found, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/messages/%d", id), nil, &msg)
	if err != nil || !found {
		return nil, false, err
	}

	return &msg, true, nil
}

// UpdateMessage implements Client.UpdateMessage.
func (c *HTTPClient) UpdateMessage(ctx context.Context, id int64, text string) (int, error) {
	var rows int

	//nolint:exhaustruct
	body := &domain.MessageCandidate{Text: &text}
	if _, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/messages/%d", id), body, &rows); err != nil {
		return 0, err
	}

	return rows, nil
}

// DeleteMessage implements Client.DeleteMessage.
func (c *HTTPClient) DeleteMessage(ctx context.Context, id int64) (int, error) {
	var rows int
	if _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/messages/%d", id), nil, &rows); err != nil {
		return 0, err
	}

	return rows, nil
}

// ListMessages implements Client.ListMessages.
func (c *HTTPClient) ListMessages(ctx context.Context) ([]domain.Message, error) {
	var messages []domain.Message
	if _, err := c.do(ctx, http.MethodGet, "/messages", nil, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// ListAccounts implements Client.ListAccounts.
func (c *HTTPClient) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if _, err := c.do(ctx, http.MethodGet, "/accounts", nil, &accounts); err != nil {
		return nil, err
	}

	return accounts, nil
}

// GetAccount implements Client.GetAccount.
func (c *HTTPClient) GetAccount(ctx context.Context, id int64) (*domain.Account, bool, error) {
	var acc domain.Account

	found, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/accounts/%d", id), nil, &acc)
	if err != nil || !found {
		return nil, false, err
	}

	return &acc, true, nil
}

// ListAccountMessages implements Client.ListAccountMessages.
func (c *HTTPClient) ListAccountMessages(ctx context.Context, accountID int64) ([]domain.Message, error) {
	var messages []domain.Message
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/accounts/%d/messages", accountID), nil, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// DeleteAccount implements Client.DeleteAccount.
// The API answers 404 for an unknown account, which is reported as false.
func (c *HTTPClient) DeleteAccount(ctx context.Context, accountID int64) (bool, error) {
	var resp domain.MessageResponse

	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/accounts/%d", accountID), nil, &resp)
	if err != nil {
		if StatusOf(err) == http.StatusNotFound {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// do sends a JSON request and decodes a JSON answer into out.
// Returns false when the server answered 200 with an empty body.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) (bool, error) {
	var body io.Reader

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("marshal request: %w", err)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(http_.TraceIDHeader, traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	c.log.DebugContext(ctx, "response", logging.Group("http",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", resp.Header.Get(http_.TraceIDHeader),
	))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{APIError: domain.APIError{Status: resp.StatusCode}} //nolint:exhaustruct
		if len(data) > 0 {
			_ = json.Unmarshal(data, &statusErr.APIError)
		}

		if statusErr.Message == "" {
			statusErr.Message = http.StatusText(resp.StatusCode)
		}

		statusErr.Status = resp.StatusCode

		return false, statusErr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	return true, nil
}
