package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"nestadmin/internal/logging"
	"nestadmin/internal/storage"
)

// Defaults applied by New.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultUserAgent  = "nestadmin"

	maxResponseBytes = 32 << 20
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// CredentialStore is the slice of durable storage the client needs: the
// bearer token is read at call time and both auth keys are cleared on 401.
type CredentialStore interface {
	Get(key string) (string, bool, error)
	Remove(keys ...string) error
}

// UnauthorizedHandler runs after a 401 has cleared stored credentials.
type UnauthorizedHandler func(ctx context.Context)

// Client performs every outbound backend call.
type Client struct {
	baseURL        string
	http           HTTPDoer
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
	store          CredentialStore
	onUnauthorized UnauthorizedHandler
	logger         *slog.Logger
	userAgent      string
	sleep          Sleeper
	requestID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithTimeout bounds each attempt. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets how many times a connection failure is retried and the
// base delay, which grows linearly with each retry.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithCredentialStore supplies the token source cleared on 401.
func WithCredentialStore(store CredentialStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithUnauthorizedHandler registers the login redirect fired on 401.
func WithUnauthorizedHandler(fn UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(agent) != "" {
			c.userAgent = strings.TrimSpace(agent)
		}
	}
}

// WithSleeper overrides the retry wait, mainly for tests.
func WithSleeper(fn Sleeper) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// New constructs a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be an absolute http(s) url", baseURL)
	}

	c := &Client{
		baseURL:    trimmed,
		http:       &http.Client{},
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     logging.NewNop(),
		userAgent:  DefaultUserAgent,
		sleep:      sleepWithContext,
		requestID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.With(logging.FieldComponent, "api")
	return c, nil
}

// BaseURL reports the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET with query parameters and decodes the body into out.
func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any, opts ...CallOption) error {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out, opts)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out, opts)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out, opts)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out, opts)
}

// Delete issues a DELETE. It never sends a body; use Do for endpoints that
// expect one.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.call(ctx, Request{Method: http.MethodDelete, Path: path}, out, opts)
}

func (c *Client) call(ctx context.Context, req Request, out any, opts []CallOption) error {
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	raw, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// Do performs req and returns the raw response body, nil for 204 or an
// empty body. A request id stored with logging.WithRequestID is sent as
// X-Request-ID in place of a generated one.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := req.method()
	target := c.baseURL + req.Path
	if query := req.encodeQuery(); query != "" {
		target += "?" + query
	}

	var payload []byte
	if req.Body != nil || isWriteMethod(method) {
		body := req.Body
		if body == nil {
			body = struct{}{}
		}
		data, err := json.Marshal(body)
		if err != nil {
			return nil, newError(KindUnknown, 0, "", fmt.Errorf("encode request body: %w", err))
		}
		payload = data
	}

	requestID, ok := logging.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.requestID()
	}
	logger := c.logger.With(
		logging.FieldRequestID, requestID,
		logging.FieldMethod, method,
		logging.FieldPath, req.Path,
	)
	attempts := 1 + c.maxRetries

	for attempt := 1; ; attempt++ {
		data, status, err := c.attempt(ctx, method, target, payload, req.Headers, requestID)
		if err == nil {
			logger.Debug("request completed", logging.FieldStatus, status, logging.FieldAttempt, attempt)
			return c.handleResponse(ctx, req, status, data, logger)
		}

		classified := classifyTransport(ctx, err)
		if classified.Kind != KindNetwork || !isConnectionError(err) || ctx.Err() != nil || attempt >= attempts {
			logger.Debug("request failed",
				logging.FieldAttempt, attempt,
				logging.FieldErrorKind, classified.Kind.String(),
				logging.FieldError, err,
			)
			return nil, classified
		}

		delay := retryDelay(c.retryDelay, attempt)
		logger.Warn("connection failed; retrying",
			logging.FieldAttempt, attempt,
			logging.FieldDelay, delay,
			logging.FieldError, err,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, newError(KindNetwork, 0, "", err)
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, headers map[string]string, requestID string) ([]byte, int, error) {
	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, method, target, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	c.applyHeaders(httpReq, headers, requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func (c *Client) applyHeaders(req *http.Request, overrides map[string]string, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range overrides {
		if strings.TrimSpace(key) == "" {
			continue
		}
		req.Header.Set(key, value)
	}
}

func (c *Client) token() string {
	if c.store == nil {
		return ""
	}
	token, ok, err := c.store.Get(storage.KeyAuthToken)
	if err != nil {
		c.logger.Debug("read auth token failed", logging.FieldError, err)
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (c *Client) handleResponse(ctx context.Context, req Request, status int, data []byte, logger *slog.Logger) (json.RawMessage, error) {
	if status >= 200 && status < 300 {
		if status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		if !json.Valid(data) {
			return nil, newError(KindUnknown, status, "", errors.New("decode response: invalid json"))
		}
		return json.RawMessage(data), nil
	}

	body := parseErrorBody(data)
	kind := kindForStatus(status)
	apiErr := newError(kind, status, "", fmt.Errorf("%s %s returned %d", req.method(), req.Path, status))
	switch kind {
	case KindValidation:
		if body.message() != "" {
			apiErr.Message = body.message()
		}
		apiErr.Fields = parseFieldErrors(body.Errors)
	case KindUnknown:
		if body.message() != "" {
			apiErr.Message = body.message()
		}
	case KindUnauthorized:
		if !req.BypassAuthRedirect {
			c.expireCredentials(ctx, logger)
		}
	}
	return nil, apiErr
}

func (c *Client) expireCredentials(ctx context.Context, logger *slog.Logger) {
	if c.store != nil {
		if err := c.store.Remove(storage.KeyAuthToken, storage.KeyUserData); err != nil {
			logger.Warn("clear stored credentials failed", logging.FieldError, err)
		}
	}
	logger.Info("session rejected by backend; credentials cleared")
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func classifyTransport(ctx context.Context, err error) *Error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return newError(KindNetwork, 0, "", ctxErr)
	}
	if isTimeout(err) {
		return newError(KindTimeout, 0, "", err)
	}
	return newError(KindNetwork, 0, "", err)
}

func decodeInto(raw json.RawMessage, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newError(KindUnknown, 0, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}
