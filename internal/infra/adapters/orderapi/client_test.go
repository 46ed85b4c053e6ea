package orderapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/service"
	"github.com/jcmexdev/broaster-orders/internal/infra/adapters/sqlite"
	"github.com/jcmexdev/broaster-orders/internal/infra/httpx"
	"github.com/jcmexdev/broaster-orders/internal/pkg/cache"
	"github.com/jcmexdev/broaster-orders/internal/pkg/httpheaders"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	svc := service.NewOrderService(repo, service.WithIdempotencyCache(cache.NewMemoryCache("orders", 1024, time.Hour), time.Hour))
	srv := httptest.NewServer(httpx.NewRouter(httpx.NewHandler(svc)))
	t.Cleanup(srv.Close)
	return srv
}

func order(code string) *domain.Order {
	return &domain.Order{
		TrackingCode:    code,
		CustomerName:    "Ana",
		CustomerAddress: "Calle 10",
		CustomerPhone:   "3001234567",
		Total:           decimal.NewFromInt(39000),
		PaymentMethod:   "cash",
		Lines: []domain.OrderLine{
			{ProductName: "Combo Personal", Quantity: 2, UnitPrice: decimal.NewFromInt(18000)},
		},
	}
}

func TestClient_RoundTrip(t *testing.T) {
	c := NewClient(newServer(t).URL+"/", 5*time.Second)
	ctx := context.Background()

	id, err := c.CreateOrder(ctx, "attempt-1", order("PB123456"))
	require.NoError(t, err)
	again, err := c.CreateOrder(ctx, "attempt-1", order("PB123456"))
	require.NoError(t, err)
	assert.Equal(t, id, again)

	orders, err := c.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "PB123456", orders[0].TrackingCode)
	assert.Equal(t, domain.StatusPreparing, orders[0].Status)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(39000)))
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, 2, orders[0].Lines[0].Quantity)

	updated, err := c.UpdateStatus(ctx, "PB123456", domain.StatusEnRoute)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnRoute, updated.Status)

	got, err := c.GetOrder(ctx, "PB123456")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnRoute, got.Status)
}

func TestClient_MapsErrorsToDomain(t *testing.T) {
	c := NewClient(newServer(t).URL, 5*time.Second)
	ctx := context.Background()
	_, err := c.CreateOrder(ctx, "", order("PB000001"))
	require.NoError(t, err)

	_, err = c.UpdateStatus(ctx, "PB999999", domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = c.UpdateStatus(ctx, "PB000001", domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = c.UpdateStatus(ctx, "PB000001", "Lost")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	bad := order("PB000002")
	bad.Lines = nil
	_, err = c.CreateOrder(ctx, "", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_KeyReusedForDifferentOrderIsConflict(t *testing.T) {
	c := NewClient(newServer(t).URL, 5*time.Second)
	ctx := context.Background()

	_, err := c.CreateOrder(ctx, "attempt-1", order("PB000001"))
	require.NoError(t, err)

	changed := order("PB000001")
	changed.Lines[0].Quantity = 3
	changed.Total = decimal.NewFromInt(57000)
	_, err = c.CreateOrder(ctx, "attempt-1", changed)

	assert.ErrorIs(t, err, domain.ErrIdempotencyConflict)
	orders, err := c.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(39000)))
}

func TestClient_SendsHeaders(t *testing.T) {
	var gotKey, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(httpheaders.HeaderXIdempotencyKey)
		gotRequestID = r.Header.Get(httpheaders.HeaderXRequestID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"orderId":9}`))
	}))
	defer srv.Close()

	ctx := httpheaders.WithRequestID(context.Background(), "req-1")
	id, err := NewClient(srv.URL, time.Second).CreateOrder(ctx, "attempt-9", order("PB000009"))

	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.Equal(t, "attempt-9", gotKey)
	assert.Equal(t, "req-1", gotRequestID)
}

func TestClient_UnsuccessfulBodyIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).CreateOrder(context.Background(), "", order("PB000001"))

	assert.ErrorIs(t, err, domain.ErrSubmissionRejected)
}

func TestClient_TimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).ListOrders(context.Background())

	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_ServerErrorHasNoSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal_error","message":"failed to list orders"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListOrders(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "internal_error", apiErr.Code)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)
	assert.NotErrorIs(t, err, ErrTransport)
}
