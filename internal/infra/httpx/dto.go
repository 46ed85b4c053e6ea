package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
)

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	TrackingNumber string          `json:"trackingNumber" validate:"required"`
	Customer       CustomerDTO     `json:"customer"`
	Items          []OrderItemDTO  `json:"items" validate:"required,min=1,dive"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"paymentMethod" validate:"required,oneof=cash card transfer"`
}

type CustomerDTO struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

type OrderItemDTO struct {
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price"`
}

type CreateOrderResponse struct {
	Success bool  `json:"success"`
	OrderID int64 `json:"orderId"`
}

// UpdateStatusRequest is the body of PUT /orders/{trackingNumber}.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderResponse mirrors the stored row, with its lines under items.
type OrderResponse struct {
	ID              int64               `json:"id"`
	TrackingNumber  string              `json:"tracking_number"`
	CustomerName    string              `json:"customer_name"`
	CustomerAddress string              `json:"customer_address"`
	CustomerPhone   string              `json:"customer_phone"`
	Total           decimal.Decimal     `json:"total"`
	PaymentMethod   string              `json:"payment_method"`
	Status          string              `json:"status"`
	OrderDate       time.Time           `json:"order_date"`
	Items           []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ToDomain builds the order to persist. Status and creation time are left
// for the service to fill in.
func (r CreateOrderRequest) ToDomain() *domain.Order {
	lines := make([]domain.OrderLine, len(r.Items))
	for i, it := range r.Items {
		lines[i] = domain.OrderLine{
			ProductName: it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
		}
	}
	return &domain.Order{
		TrackingCode:    r.TrackingNumber,
		CustomerName:    r.Customer.Name,
		CustomerAddress: r.Customer.Address,
		CustomerPhone:   r.Customer.Phone,
		Total:           r.Total,
		PaymentMethod:   r.PaymentMethod,
		Lines:           lines,
	}
}

// NewCreateOrderRequest is the client-side inverse of ToDomain.
func NewCreateOrderRequest(o *domain.Order) CreateOrderRequest {
	items := make([]OrderItemDTO, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = OrderItemDTO{
			Name:     l.ProductName,
			Quantity: l.Quantity,
			Price:    l.UnitPrice,
		}
	}
	return CreateOrderRequest{
		TrackingNumber: o.TrackingCode,
		Customer: CustomerDTO{
			Name:    o.CustomerName,
			Address: o.CustomerAddress,
			Phone:   o.CustomerPhone,
		},
		Items:         items,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
	}
}

// ToDomain converts a response back into a domain order on the client side.
func (o OrderResponse) ToDomain() domain.Order {
	lines := make([]domain.OrderLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = domain.OrderLine{
			OrderID:     o.ID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
		}
	}
	return domain.Order{
		ID:              o.ID,
		TrackingCode:    o.TrackingNumber,
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		CustomerPhone:   o.CustomerPhone,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		Status:          domain.OrderStatus(o.Status),
		CreatedAt:       o.OrderDate,
		Lines:           lines,
	}
}

func mapOrderToResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = OrderItemResponse{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
		}
	}
	return OrderResponse{
		ID:              o.ID,
		TrackingNumber:  o.TrackingCode,
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		CustomerPhone:   o.CustomerPhone,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status.String(),
		OrderDate:       o.CreatedAt,
		Items:           items,
	}
}
