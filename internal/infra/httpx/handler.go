package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/ports"
	"github.com/jcmexdev/broaster-orders/internal/pkg/httpheaders"
)

const maxBodyBytes = 1 << 20

// Handler serves the order endpoints used by the storefront and the admin board.
type Handler struct {
	orders   ports.OrderService
	validate *validator.Validate
}

func NewHandler(orders ports.OrderService) *Handler {
	return &Handler{
		orders:   orders,
		validate: newValidator(),
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CreateOrder persists the order and its lines. A repeated X-Idempotency-Key
// returns the id of the order created first.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", describeValidation(err))
		return
	}

	ctx := r.Context()
	slog.InfoContext(ctx, "creating order",
		"request_id", httpheaders.RequestID(ctx),
		"tracking_code", req.TrackingNumber,
		"items", len(req.Items),
	)

	id, err := h.orders.CreateOrder(ctx, httpheaders.IdempotencyKey(ctx), req.ToDomain())
	if err != nil {
		writeServiceError(w, r, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{Success: true, OrderID: id})
}

// ListOrders returns every order, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, "list orders", err)
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = mapOrderToResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	trackingNumber := chi.URLParam(r, "trackingNumber")

	order, err := h.orders.GetOrder(r.Context(), trackingNumber)
	if err != nil {
		writeServiceError(w, r, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	trackingNumber := chi.URLParam(r, "trackingNumber")

	var req UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeError(w, http.StatusBadRequest, "status_required", "status is required")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), trackingNumber, domain.OrderStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// describeValidation lists the failing fields by their JSON path,
// e.g. "items[0].quantity must be gt=0".
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, field+" must be "+rule)
	}
	return strings.Join(msgs, "; ")
}

// writeServiceError maps domain errors to status codes. Unexpected errors are
// logged in full and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, "invalid_order", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrStatusConflict):
		writeError(w, http.StatusConflict, "status_conflict", err.Error())
	case errors.Is(err, domain.ErrIdempotencyConflict):
		writeError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	default:
		slog.ErrorContext(r.Context(), op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to "+op)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
