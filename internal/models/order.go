package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Address struct {
	Name       string `json:"name" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone,omitempty"`
}

// OrderItem is an immutable line snapshot: product name, sku and image are
// captured at order creation so later catalog edits cannot rewrite history.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type Shipping struct {
	Address           Address         `json:"address"`
	Method            string          `json:"method"`
	Cost              decimal.Decimal `json:"cost"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	ActualDelivery    *time.Time      `json:"actual_delivery,omitempty"`
}

type Payment struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	RefundedAt    *time.Time    `json:"refunded_at,omitempty"`
}

// TimelineEntry is one row of the append-only status audit log. Every status
// mutation appends exactly one entry; nothing ever removes one.
type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

type Order struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"user_id"`
	OrderNumber        string          `json:"order_number"`
	Items              []OrderItem     `json:"items"`
	Status             OrderStatus     `json:"status"`
	Shipping           Shipping        `json:"shipping"`
	Payment            Payment         `json:"payment"`
	Totals             PricingSnapshot `json:"totals"`
	Coupon             *Coupon         `json:"coupon,omitempty"`
	Timeline           []TimelineEntry `json:"timeline"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	ReturnReason       string          `json:"return_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// DeliveredAt returns the timestamp of the delivered timeline entry, or nil
// if the order never reached delivery. Used as the base of the return window
// (falling back to CreatedAt when absent).
func (o *Order) DeliveredAt() *time.Time {
	for i := len(o.Timeline) - 1; i >= 0; i-- {
		if o.Timeline[i].Status == OrderStatusDelivered {
			ts := o.Timeline[i].Timestamp

			return &ts
		}
	}

	return nil
}

type CreateOrderRequest struct {
	ShippingAddress Address       `json:"shipping_address" validate:"required"`
	PaymentMethod   PaymentMethod `json:"payment_method" validate:"required,oneof=card upi net_banking wallet cod"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

type ReturnOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
	Note   string      `json:"note,omitempty"`
}

type OrderHistoryResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
}
