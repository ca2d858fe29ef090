package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a line item keyed by product. UnitPrice is the catalog price
// snapshotted when the item was first added, not re-read on later mutations.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	AddedAt   time.Time       `json:"added_at"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds one owner's open line items. Items are keyed by product id so no
// two lines can share a product. Version backs the optimistic concurrency
// check in the repository; it is never mutated outside of it.
type Cart struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	Items     map[string]CartItem `json:"items"`
	Coupon    *Coupon             `json:"coupon,omitempty"`
	Version   int64               `json:"-"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`

	// Totals is derived on read and never persisted.
	Totals *PricingSnapshot `json:"totals,omitempty"`
}

// ItemList returns the items in a deterministic-enough slice form for
// pricing; line order does not affect totals.
func (c *Cart) ItemList() []CartItem {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, item)
	}

	return items
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}

	return count
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=0"`
}

type ApplyCouponRequest struct {
	Code  string          `json:"code" validate:"required"`
	Type  DiscountType    `json:"type" validate:"required,oneof=percentage fixed"`
	Value decimal.Decimal `json:"value" validate:"required"`
}
