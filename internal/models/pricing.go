package models

import "github.com/shopspring/decimal"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon is a discount rule attached to a cart. Percentage rules apply their
// value against the subtotal, fixed rules subtract a flat amount.
type Coupon struct {
	Code  string          `json:"code" validate:"required"`
	Type  DiscountType    `json:"type" validate:"required,oneof=percentage fixed"`
	Value decimal.Decimal `json:"value" validate:"required"`
}

// PricingSnapshot is derived, never authoritative: recomputed on every cart
// read and frozen into an order exactly once at creation.
// Invariant: Total == Subtotal + Tax + Shipping - Discount, all components
// non-negative, discount never exceeding subtotal+tax+shipping.
type PricingSnapshot struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// ZeroPricingSnapshot returns the all-zero snapshot an empty item set prices
// to. decimal.Decimal's zero value marshals fine, but being explicit keeps
// persisted rows comparable.
func ZeroPricingSnapshot() PricingSnapshot {
	return PricingSnapshot{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}
}
