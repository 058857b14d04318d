package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the analysis backend's default address
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a single request
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries a per-request correlation id
	RequestIDHeader = "X-Request-ID"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Signer     *TokenSigner
	Logger     logging.Logger
}

// Client talks to the analysis backend over its REST API. Requests are never
// retried; a failure is returned to the caller as is.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *TokenSigner
	logger     logging.Logger
}

// New creates a client. Zero options select the defaults.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: hc,
		signer:     opts.Signer,
		logger:     logging.OrNop(opts.Logger).With(logging.Component("client")),
	}
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError is returned for a non-2xx response
type StatusError struct {
	Method string
	Path   string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Unwrap lets callers match dataset.ErrRequestFailed and, for 404s, dataset.ErrPathNotFound
func (e *StatusError) Unwrap() []error {
	if e.Code == http.StatusNotFound {
		return []error{dataset.ErrRequestFailed, dataset.ErrPathNotFound}
	}
	return []error{dataset.ErrRequestFailed}
}

// errorBody is the backend's error envelope
type errorBody struct {
	Detail           json.RawMessage `json:"detail"`
	ValidationErrors []string        `json:"validationErrors"`
}

// message renders the envelope the way the dashboard shows it, or "" when
// the body carries nothing useful
func (b errorBody) message() string {
	if len(b.ValidationErrors) > 0 {
		return "Validation errors:\n" + strings.Join(b.ValidationErrors, "\n")
	}
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	return string(b.Detail)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", body, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.signer != nil {
		token, err := c.signer.Sign()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", logging.RequestID(reqID), logging.String("path", path), logging.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request complete",
		logging.RequestID(reqID),
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Latency(time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, Code: resp.StatusCode}
		var eb errorBody
		if raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(raw, &eb) == nil {
			se.Detail = eb.message()
		}
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
