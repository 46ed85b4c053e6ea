package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/ports"
	"github.com/jcmexdev/broaster-orders/internal/pkg/cache"
)

const defaultIdempotencyTTL = 24 * time.Hour

// Ensure OrderService implements the port at compile time.
var _ ports.OrderService = (*OrderService)(nil)

// OrderService owns the order lifecycle on the server side: idempotent
// creation, listing and status transitions.
type OrderService struct {
	repo               ports.OrderRepository
	cache              cache.Cache
	events             ports.EventPublisher
	idempotencyTTL     time.Duration
	enforceTransitions bool
	now                func() time.Time
	tracer             trace.Tracer

	// inflight collapses concurrent creates sharing an idempotency key.
	inflight singleflight.Group
}

type Option func(*OrderService)

// WithIdempotencyCache remembers created order ids per idempotency key for ttl.
func WithIdempotencyCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *OrderService) {
		s.cache = c
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *OrderService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithTransitionEnforcement toggles the forward-only status graph. When
// disabled any known status may overwrite any other.
func WithTransitionEnforcement(enforce bool) Option {
	return func(s *OrderService) { s.enforceTransitions = enforce }
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(repo ports.OrderRepository, opts ...Option) *OrderService {
	s := &OrderService{
		repo:               repo,
		events:             ports.NopPublisher{},
		idempotencyTTL:     defaultIdempotencyTTL,
		enforceTransitions: true,
		now:                time.Now,
		tracer:             otel.Tracer("github.com/jcmexdev/broaster-orders/internal/core/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder persists order and its lines. A repeated idempotencyKey returns
// the id of the order created by the first request instead of inserting again,
// provided the content matches; a key reused for a different order fails with
// domain.ErrIdempotencyConflict.
func (s *OrderService) CreateOrder(ctx context.Context, idempotencyKey string, order *domain.Order) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.String("order.tracking_code", order.TrackingCode)))
	defer span.End()

	if err := order.Validate(); err != nil {
		return 0, fail(span, err)
	}

	if idempotencyKey == "" {
		return s.create(ctx, span, "", order)
	}

	fingerprint := order.ContentFingerprint()
	v, err, shared := s.inflight.Do(idempotencyKey, func() (any, error) {
		if prev, ok := s.lookupIdempotent(ctx, idempotencyKey); ok {
			slog.InfoContext(ctx, "duplicate order submission", "idempotency_key", idempotencyKey, "order_id", prev.id)
			return prev, nil
		}
		id, err := s.create(ctx, span, idempotencyKey, order)
		if err != nil {
			return nil, err
		}
		return idempotentEntry{id: id, fingerprint: fingerprint}, nil
	})
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Bool("order.idempotent_shared", shared))

	entry := v.(idempotentEntry)
	if entry.fingerprint != "" && entry.fingerprint != fingerprint {
		slog.WarnContext(ctx, "idempotency key reused for different content",
			"idempotency_key", idempotencyKey,
			"order_id", entry.id,
			"tracking_code", order.TrackingCode,
		)
		return 0, fail(span, fmt.Errorf("%w: key %s belongs to order %d", domain.ErrIdempotencyConflict, idempotencyKey, entry.id))
	}
	return entry.id, nil
}

// idempotentEntry is what the cache remembers per key, stored as "id:fingerprint".
type idempotentEntry struct {
	id          int64
	fingerprint string
}

func (s *OrderService) create(ctx context.Context, span trace.Span, idempotencyKey string, order *domain.Order) (int64, error) {
	if order.Status == "" {
		order.Status = domain.StatusPreparing
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now().UTC()
	}

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return 0, fail(span, fmt.Errorf("create order %s: %w", order.TrackingCode, err))
	}
	order.ID = id
	span.SetAttributes(attribute.Int64("order.id", id))

	s.rememberIdempotent(ctx, idempotencyKey, idempotentEntry{id: id, fingerprint: order.ContentFingerprint()})

	slog.InfoContext(ctx, "order created",
		"order_id", id,
		"tracking_code", order.TrackingCode,
		"total", order.Total.String(),
		"lines", len(order.Lines),
	)

	s.publish(ctx, ports.OrderEvent{
		Type:         ports.EventOrderPlaced,
		OrderID:      id,
		TrackingCode: order.TrackingCode,
		Status:       order.Status,
		Total:        order.Total.String(),
		OccurredAt:   s.now().UTC(),
	})

	return id, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list orders: %w", err))
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, trackingCode string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder",
		trace.WithAttributes(attribute.String("order.tracking_code", trackingCode)))
	defer span.End()

	order, err := s.repo.GetByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, fail(span, fmt.Errorf("get order %s: %w", trackingCode, err))
	}
	return order, nil
}

// UpdateStatus moves the order identified by trackingCode to status. No
// history of previous statuses is kept.
func (s *OrderService) UpdateStatus(ctx context.Context, trackingCode string, status domain.OrderStatus) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(
			attribute.String("order.tracking_code", trackingCode),
			attribute.String("order.status", status.String()),
		))
	defer span.End()

	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return nil, fail(span, err)
	}

	var expected domain.OrderStatus
	if s.enforceTransitions {
		current, err := s.repo.GetByTrackingCode(ctx, trackingCode)
		if err != nil {
			return nil, fail(span, fmt.Errorf("update status %s: %w", trackingCode, err))
		}
		if err := domain.ValidateTransition(current.Status, status); err != nil {
			return nil, fail(span, err)
		}
		if current.Status == status {
			return current, nil
		}
		expected = current.Status
	}

	order, err := s.repo.UpdateStatus(ctx, trackingCode, status, expected)
	if err != nil {
		return nil, fail(span, fmt.Errorf("update status %s: %w", trackingCode, err))
	}

	attrs := []any{"tracking_code", trackingCode, "to", status}
	if expected != "" {
		attrs = append(attrs, "from", expected)
	} else {
		attrs = append(attrs, "override", true)
	}
	slog.InfoContext(ctx, "order status updated", attrs...)

	s.publish(ctx, ports.OrderEvent{
		Type:         ports.EventOrderStatusChanged,
		OrderID:      order.ID,
		TrackingCode: order.TrackingCode,
		Status:       order.Status,
		OccurredAt:   s.now().UTC(),
	})

	return order, nil
}

func (s *OrderService) lookupIdempotent(ctx context.Context, key string) (idempotentEntry, bool) {
	if key == "" || s.cache == nil {
		return idempotentEntry{}, false
	}
	val, err := s.cache.Get(ctx, s.cache.GenerateKey("create", key))
	if err != nil {
		slog.WarnContext(ctx, "idempotency lookup failed", "idempotency_key", key, "error", err)
		return idempotentEntry{}, false
	}
	if val == "" {
		return idempotentEntry{}, false
	}
	rawID, fingerprint, _ := strings.Cut(val, ":")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		slog.WarnContext(ctx, "malformed idempotency entry", "idempotency_key", key, "value", val)
		return idempotentEntry{}, false
	}
	return idempotentEntry{id: id, fingerprint: fingerprint}, true
}

func (s *OrderService) rememberIdempotent(ctx context.Context, key string, e idempotentEntry) {
	if key == "" || s.cache == nil {
		return
	}
	val := strconv.FormatInt(e.id, 10) + ":" + e.fingerprint
	if err := s.cache.Set(ctx, s.cache.GenerateKey("create", key), val, s.idempotencyTTL); err != nil {
		slog.WarnContext(ctx, "idempotency store failed", "idempotency_key", key, "order_id", e.id, "error", err)
	}
}

// publish runs after the write is committed, so a broker failure is logged
// and never turned into a request failure.
func (s *OrderService) publish(ctx context.Context, event ports.OrderEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish order event",
			"type", event.Type,
			"tracking_code", event.TrackingCode,
			"error", err,
		)
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
