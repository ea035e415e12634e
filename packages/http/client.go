package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultUserAgent is sent unless the request sets its own User-Agent.
	DefaultUserAgent = "fesi"
	contentTypeJSON  = "application/json"
)

// Client executes RequestSpecs. It holds configuration only; a fresh
// transport client is built for every execution.
type Client struct {
	timeout        time.Duration
	userAgent      string
	defaultHeaders map[string]string
	transport      http.RoundTripper
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		userAgent:      DefaultUserAgent,
		defaultHeaders: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout sets an overall deadline per request. Zero keeps the
// transport default, which never times out.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithDefaultHeaders sets headers sent with every request. Request
// headers win on conflict.
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

func (c *Client) newTransportClient() *resty.Client {
	rc := resty.New()
	if c.timeout > 0 {
		rc.SetTimeout(c.timeout)
	}
	if c.transport != nil {
		rc.SetTransport(c.transport)
	}
	return rc
}

// Execute sends the request and returns the response body as text.
func (c *Client) Execute(ctx context.Context, spec *RequestSpec) (string, error) {
	resp, err := c.Do(ctx, spec)
	if err != nil {
		return "", err
	}
	return resp.BodyString(), nil
}

// Do sends the request and returns the full response. Validation errors
// are returned before any network activity.
func (c *Client) Do(ctx context.Context, spec *RequestSpec) (*Response, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateHeaders(c.defaultHeaders); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := spec.Method.String()
	payload, err := spec.Payload()
	if err != nil {
		return nil, &RequestError{Method: method, URL: spec.URL, Err: fmt.Errorf("encoding body: %w", err)}
	}

	req := c.newTransportClient().R().SetContext(ctx)
	if c.userAgent != "" {
		req.SetHeader("User-Agent", c.userAgent)
	}
	req.SetHeaders(c.defaultHeaders)
	req.SetHeaders(spec.Headers)
	if payload != nil {
		if !hasHeader(spec.Headers, "Content-Type") {
			req.SetHeader("Content-Type", contentTypeJSON)
		}
		req.SetBody(payload)
	}

	start := time.Now()
	resp, err := req.Execute(method, spec.URL)
	duration := time.Since(start)
	if err != nil {
		return nil, &RequestError{Method: method, URL: spec.URL, Err: err}
	}

	headers := make(map[string]string, len(resp.Header()))
	for k := range resp.Header() {
		headers[k] = resp.Header().Get(k)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Headers:    headers,
		Body:       resp.Body(),
		Duration:   duration,
	}, nil
}

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
