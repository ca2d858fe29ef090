// Package pricing computes cart and order totals. It is the single source of
// truth for money math: every place a total is displayed or persisted goes
// through Engine.Compute, never a hand-rolled sum.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/neoshop/neoshop-platform/internal/config"
	"github.com/neoshop/neoshop-platform/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Engine prices item sets against configured tax and shipping rules. It is
// pure: no storage, no clock, no side effects.
type Engine struct {
	taxRate               decimal.Decimal
	freeShippingThreshold decimal.Decimal
	shippingFee           decimal.Decimal
}

func NewEngine(cfg *config.Pricing) *Engine {
	return &Engine{
		taxRate:               decimal.NewFromFloat(cfg.TaxRate),
		freeShippingThreshold: decimal.NewFromFloat(cfg.FreeShippingThreshold),
		shippingFee:           decimal.NewFromFloat(cfg.ShippingFee),
	}
}

// Compute totals the given items and discount rules. An empty item set yields
// the zero snapshot. Amounts are rounded to whole currency units, and the
// summed discount is clamped so the total can never go negative.
func (e *Engine) Compute(items []models.CartItem, rules []models.Coupon) models.PricingSnapshot {
	if len(items) == 0 {
		return models.ZeroPricingSnapshot()
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	tax := subtotal.Mul(e.taxRate).Round(0)

	shipping := e.shippingFee
	if subtotal.GreaterThanOrEqual(e.freeShippingThreshold) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	for _, rule := range rules {
		discount = discount.Add(e.ruleAmount(rule, subtotal))
	}
	discount = discount.Round(0)

	// Discount may never exceed what is owed.
	owed := subtotal.Add(tax).Add(shipping)
	if discount.GreaterThan(owed) {
		discount = owed
	}

	return models.PricingSnapshot{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    owed.Sub(discount),
	}
}

func (e *Engine) ruleAmount(rule models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal

	switch rule.Type {
	case models.DiscountTypePercentage:
		amount = subtotal.Mul(rule.Value).Div(hundred)
	case models.DiscountTypeFixed:
		amount = rule.Value
	default:
		return decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}

	return amount
}
