package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Connector issues JSON requests against a base URL
type Connector struct {
	baseURL          string
	httpClient       *http.Client
	maxResponseBytes int64
}

// NewConnector creates a connector for baseURL
func NewConnector(baseURL string, opts ...Option) *Connector {
	cfg := buildConfig(opts...)
	return &Connector{
		baseURL:          strings.TrimRight(baseURL, "/"),
		httpClient:       newHTTPClient(cfg),
		maxResponseBytes: cfg.maxResponseBytes,
	}
}

// BaseURL returns the connector's base URL without a trailing slash
func (c *Connector) BaseURL() string {
	return c.baseURL
}

// RequestOpt adjusts a single request
type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	overrideURL string
}

// WithHeader sets a request header
func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// WithURL replaces baseURL + endpoint with an absolute URL
func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// DoRequest sends reqBody as JSON and decodes a 2xx response into respBody.
// Transport failures return *NetworkError and non-2xx statuses *HTTPError.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	url := c.baseURL + endpoint
	if cfg.overrideURL != "" {
		url = cfg.overrideURL
	}

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	bodyBytes, _, err := c.do(req)
	if err != nil {
		return err
	}

	if respBody != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Fetch GETs an absolute URL and returns the raw body and its content type
func (c *Connector) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Connector) do(req *http.Request) ([]byte, string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.maxResponseBytes > 0 {
		reader = io.LimitReader(resp.Body, c.maxResponseBytes+1)
	}
	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}
	if c.maxResponseBytes > 0 && int64(len(bodyBytes)) > c.maxResponseBytes {
		return nil, "", fmt.Errorf("response body exceeds %d bytes", c.maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(bodyBytes),
		}
	}
	return bodyBytes, resp.Header.Get("Content-Type"), nil
}

// HTTPError represents a non-2xx response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a transport-level failure (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
