// Package orderapi is the HTTP adapter the storefront and the admin board use
// to reach the order API. It implements ports.OrderService so both drivers
// depend on the port, not on the transport.
package orderapi

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

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/ports"
	"github.com/jcmexdev/broaster-orders/internal/infra/httpx"
	"github.com/jcmexdev/broaster-orders/internal/pkg/httpheaders"
)

var _ ports.OrderService = (*Client)(nil)

// ErrTransport marks failures where no response was received, timeouts included.
var ErrTransport = errors.New("order api unreachable")

// APIError is a non-2xx answer from the order API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("order api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("order api: %d %s", e.StatusCode, e.Code)
}

// Unwrap maps the response onto the domain sentinel it stands for, so callers
// can keep using errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrOrderNotFound
	case http.StatusConflict:
		switch e.Code {
		case "status_conflict":
			return domain.ErrStatusConflict
		case "idempotency_conflict":
			return domain.ErrIdempotencyConflict
		}
		return domain.ErrInvalidTransition
	case http.StatusBadRequest:
		if e.Code == "invalid_status" || e.Code == "status_required" {
			return domain.ErrInvalidStatus
		}
		return domain.ErrInvalidOrder
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client whose requests are traced and give up after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// CreateOrder posts order. idempotencyKey is sent as X-Idempotency-Key so a
// retried attempt maps to the order the first attempt created.
func (c *Client) CreateOrder(ctx context.Context, idempotencyKey string, order *domain.Order) (int64, error) {
	var resp httpx.CreateOrderResponse
	err := c.do(ctx, http.MethodPost, "/orders", idempotencyKey, httpx.NewCreateOrderRequest(order), &resp)
	if err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, fmt.Errorf("order api: create %s: %w", order.TrackingCode, domain.ErrSubmissionRejected)
	}
	return resp.OrderID, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var resp []httpx.OrderResponse
	if err := c.do(ctx, http.MethodGet, "/orders", "", nil, &resp); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, len(resp))
	for i, o := range resp {
		orders[i] = o.ToDomain()
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, trackingCode string) (*domain.Order, error) {
	var resp httpx.OrderResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(trackingCode), "", nil, &resp); err != nil {
		return nil, err
	}
	o := resp.ToDomain()
	return &o, nil
}

func (c *Client) UpdateStatus(ctx context.Context, trackingCode string, status domain.OrderStatus) (*domain.Order, error) {
	var resp httpx.OrderResponse
	body := httpx.UpdateStatusRequest{Status: status.String()}
	if err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(trackingCode), "", body, &resp); err != nil {
		return nil, err
	}
	o := resp.ToDomain()
	return &o, nil
}

func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("order api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("order api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := httpheaders.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(httpheaders.HeaderXRequestID, requestID)
	if idempotencyKey != "" {
		req.Header.Set(httpheaders.HeaderXIdempotencyKey, idempotencyKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var e httpx.ErrorResponse
		if json.NewDecoder(res.Body).Decode(&e) == nil {
			apiErr.Code = e.Error
			apiErr.Message = e.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("order api: decode %s %s: %w", method, path, err)
	}
	return nil
}
