package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluate computes the discount a coupon grants against a cart subtotal.
// It is pure: the caller owns persisting the applied-coupon state for later
// total recalculations.
//
// Rejections map to the package sentinels: nil coupon → ErrNotFound, past
// expiry → ErrExpired, subtotal below the minimum purchase → ErrMinPurchase.
// On success the returned discount is always within [0, subtotal], even when
// the coupon data is malformed (negative value, cap above subtotal).
func Evaluate(subtotal decimal.Decimal, c *Coupon, now time.Time) (decimal.Decimal, error) {
	if c == nil {
		return decimal.Zero, ErrNotFound
	}
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		return decimal.Zero, ErrExpired
	}
	if c.MinPurchase.IsPositive() && subtotal.LessThan(c.MinPurchase) {
		return decimal.Zero, ErrMinPurchase
	}

	var amount decimal.Decimal
	switch c.Type {
	case DiscountPercentage:
		amount = subtotal.Mul(c.Value).Div(hundred)
		if c.MaxDiscount.IsPositive() {
			amount = decimal.Min(amount, c.MaxDiscount)
		}
	case DiscountFlat:
		amount = c.Value
		if c.MaxDiscount.IsPositive() {
			amount = decimal.Min(amount, c.MaxDiscount)
		}
	default:
		// Unknown discount types grant nothing rather than failing checkout.
		amount = decimal.Zero
	}

	return clamp(amount, subtotal).Round(2), nil
}

// clamp bounds the discount to [0, subtotal].
func clamp(amount, subtotal decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
