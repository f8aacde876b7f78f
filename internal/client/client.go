// Package client is a thin wrapper over the invoice REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"invoicing/internal/model"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// ErrNotFound matches any APIError with status 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client issues one HTTP request per operation. There is no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("api_client")
		}
	}
}

// New creates a client for the backend rooted at baseURL; requests go to {baseURL}/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := c.do(ctx, http.MethodGet, "/invoices", nil, &invoices); err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []model.Invoice{}
	}
	return invoices, nil
}

func (c *Client) GetInvoice(ctx context.Context, id string) (model.Invoice, error) {
	var inv model.Invoice
	err := c.do(ctx, http.MethodGet, invoicePath(id), nil, &inv)
	return inv, err
}

func (c *Client) CreateInvoice(ctx context.Context, draft model.Invoice) (model.Invoice, error) {
	var inv model.Invoice
	err := c.do(ctx, http.MethodPost, "/invoices", draft, &inv)
	return inv, err
}

func (c *Client) UpdateInvoice(ctx context.Context, id string, draft model.Invoice) (model.Invoice, error) {
	var inv model.Invoice
	err := c.do(ctx, http.MethodPut, invoicePath(id), draft, &inv)
	return inv, err
}

func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, invoicePath(id), nil, nil)
}

// GetCompanyProfile returns nil when no profile has been saved yet.
func (c *Client) GetCompanyProfile(ctx context.Context) (*model.CompanyProfile, error) {
	var profile *model.CompanyProfile
	err := c.do(ctx, http.MethodGet, "/company", nil, &profile)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) SaveCompanyProfile(ctx context.Context, profile model.CompanyProfile) (model.CompanyProfile, error) {
	var saved model.CompanyProfile
	err := c.do(ctx, http.MethodPost, "/company", profile, &saved)
	return saved, err
}

func invoicePath(id string) string {
	return "/invoices/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(payload)}
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// errorDetail reads {"detail": ...} or the envelope's {"error": "..."}.
func errorDetail(payload []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return strings.TrimSpace(string(payload))
	}
	if len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			return s
		}
		return string(body.Detail)
	}
	return body.Error
}
