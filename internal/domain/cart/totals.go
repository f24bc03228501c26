package cart

import (
	"github.com/shopspring/decimal"
)

// ShippingPolicy is the single pure rule both the client-facing totals and
// the server-trusted order amount are computed from: a flat fee below the
// free-shipping threshold, nothing at or above it.
type ShippingPolicy struct {
	FreeAbove decimal.Decimal
	Fee       decimal.Decimal
}

// DefaultShippingPolicy matches the storefront defaults: free shipping from
// ₹400, flat ₹80 below.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeAbove: decimal.NewFromInt(400),
		Fee:       decimal.NewFromInt(80),
	}
}

// Cost returns the shipping charge for the given subtotal. An empty cart
// (zero subtotal) ships for nothing because there is nothing to ship.
func (p ShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	if subtotal.GreaterThanOrEqual(p.FreeAbove) {
		return decimal.Zero
	}
	return p.Fee
}

// Totals holds the derived amounts for a cart.
type Totals struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Calculate derives totals from the given lines and discount under the
// policy. Given identical inputs the result is identical: decimal
// arithmetic only, no floats, grand total clamped at zero.
func Calculate(lines []Line, discount decimal.Decimal, policy ShippingPolicy) Totals {
	subtotal := Subtotal(lines)
	shipping := policy.Cost(subtotal)

	grand := subtotal.Add(shipping).Sub(discount)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Discount:   discount,
		GrandTotal: grand,
	}
}
