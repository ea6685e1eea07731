// Package backend is a thin client for the valuation records API. Every
// response uses the {success, data, message} envelope.
package backend

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/pkg/errors"
	"github.com/verustcode/valreport/pkg/httpclient"
	"github.com/verustcode/valreport/pkg/logger"
	"github.com/verustcode/valreport/pkg/telemetry"
)

// Options configures the client
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Retry   httpclient.RetryConfig
	// ValuationsPath is the collection endpoint, "/valuations" by default
	ValuationsPath string
}

// ListFilter narrows List results
type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

// envelope is the response wrapper used by every endpoint
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client calls the valuation records API
type Client struct {
	conn  *httpclient.Connector
	retry httpclient.RetryConfig
	path  string
}

// NewClient creates a client. Without a base URL every call fails with
// ErrCodeBackendDisabled.
func NewClient(opts Options) *Client {
	if opts.ValuationsPath == "" {
		opts.ValuationsPath = "/valuations"
	}
	if opts.BaseURL == "" {
		return &Client{path: opts.ValuationsPath}
	}

	connOpts := []httpclient.Option{httpclient.WithRequestLogging()}
	if opts.Timeout > 0 {
		connOpts = append(connOpts, httpclient.WithRequestTimeout(opts.Timeout))
	}
	if opts.Token != "" {
		connOpts = append(connOpts, httpclient.WithAuthToken(opts.Token))
	}

	return &Client{
		conn:  httpclient.NewConnector(opts.BaseURL, connOpts...),
		retry: opts.Retry,
		path:  opts.ValuationsPath,
	}
}

// Enabled reports whether c can make calls
func (c *Client) Enabled() bool {
	return c != nil && c.conn != nil
}

// Create stores a new valuation and returns it as saved by the backend
func (c *Client) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	var out record.Record
	err := c.call(ctx, "create", http.MethodPost, c.path, rec, &out, false)
	return out, err
}

// Get fetches one valuation
func (c *Client) Get(ctx context.Context, id string) (record.Record, error) {
	var out record.Record
	err := c.call(ctx, "get", http.MethodGet, c.itemPath(id), nil, &out, true)
	return out, err
}

// List fetches valuations matching filter
func (c *Client) List(ctx context.Context, filter ListFilter) ([]record.Record, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	endpoint := c.path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var out []record.Record
	if err := c.call(ctx, "list", http.MethodGet, endpoint, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the stored fields of a valuation
func (c *Client) Update(ctx context.Context, id string, rec record.Record) (record.Record, error) {
	var out record.Record
	err := c.call(ctx, "update", http.MethodPut, c.itemPath(id), rec, &out, true)
	return out, err
}

// Approve moves a valuation to the approved state
func (c *Client) Approve(ctx context.Context, id, comments string) (record.Record, error) {
	var out record.Record
	body := map[string]string{"comments": comments}
	err := c.call(ctx, "approve", http.MethodPost, c.itemPath(id)+"/approve", body, &out, false)
	return out, err
}

// Reject moves a valuation to the rejected state
func (c *Client) Reject(ctx context.Context, id, reason string) (record.Record, error) {
	var out record.Record
	body := map[string]string{"reason": reason}
	err := c.call(ctx, "reject", http.MethodPost, c.itemPath(id)+"/reject", body, &out, false)
	return out, err
}

// Delete removes a valuation
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.call(ctx, "delete", http.MethodDelete, c.itemPath(id), nil, nil, true)
}

func (c *Client) itemPath(id string) string {
	return c.path + "/" + url.PathEscape(id)
}

// call performs one API operation. Idempotent operations are retried on
// transient failures.
func (c *Client) call(ctx context.Context, op, method, endpoint string, reqBody, out any, idempotent bool) error {
	if !c.Enabled() {
		return errors.New(errors.ErrCodeBackendDisabled, "backend API is not configured")
	}

	ctx, span := telemetry.StartSpan(ctx, "backend."+op)
	defer span.End()
	span.SetAttributes(telemetry.AttrBackendOp.String(op))

	var env envelope
	do := func() error {
		env = envelope{}
		return c.conn.DoRequest(ctx, method, endpoint, reqBody, &env)
	}

	var err error
	if idempotent {
		err = retry.Do(do, c.retry.Options(ctx)...)
	} else {
		err = do()
	}
	if err == nil && !env.Success {
		err = errors.New(errors.ErrCodeBackendStatus, messageOr(env.Message, "backend reported failure"))
	}
	if err == nil && out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if decodeErr := json.Unmarshal(env.Data, out); decodeErr != nil {
			err = errors.Wrap(errors.ErrCodeBackendStatus, "unexpected response data", decodeErr)
		}
	}

	telemetry.GetMetrics().RecordBackendCall(ctx, op, err == nil)
	if err != nil {
		err = classify(op, err)
		telemetry.SetSpanError(span, err)
		logger.Warn("[Backend] Call failed",
			zap.String("operation", op),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return err
	}

	telemetry.SetSpanOK(span)
	logger.Debug("[Backend] Call succeeded",
		zap.String("operation", op),
		zap.String("endpoint", endpoint),
	)
	return nil
}

// classify maps transport and status failures onto application error codes
func classify(op string, err error) error {
	if errors.IsAppError(err) {
		return err
	}

	var httpErr *httpclient.HTTPError
	if stderrors.As(err, &httpErr) {
		msg := envelopeMessage(httpErr.Message)
		if httpErr.StatusCode == http.StatusNotFound {
			return errors.Wrap(errors.ErrCodeBackendNotFound, messageOr(msg, "valuation not found"), err)
		}
		return errors.Wrap(errors.ErrCodeBackendStatus,
			messageOr(msg, fmt.Sprintf("backend %s returned status %d", op, httpErr.StatusCode)), err)
	}
	return errors.Wrap(errors.ErrCodeBackendRequest, fmt.Sprintf("backend %s request failed", op), err)
}

// envelopeMessage extracts the message of an error body, if it is an envelope
func envelopeMessage(body string) string {
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return ""
	}
	return env.Message
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
