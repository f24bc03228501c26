package webhook

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/localbasket/storefront/internal/domain/cart"
	"github.com/localbasket/storefront/internal/domain/coupon"
	"github.com/localbasket/storefront/internal/domain/order"
	"github.com/localbasket/storefront/internal/gateway"
)

// Flat note keys accepted as an alternative to a single JSON coupon object.
const (
	noteCouponCode     = "coupon_code"
	noteCouponName     = "coupon_name"
	noteCouponDiscount = "coupon_discount"
)

// Reconstruct rebuilds the canonical order record from a verified payment
// entity. It never fails: any individual note that does not parse degrades
// to its zero value so a malformed coupon or item list cannot block the
// confirmation emails. The grand total comes from the charged amount, and
// the discount is re-derived from the notes rather than trusted from a
// single field: explicit discount note first, then the coupon object's
// discount, defaulting to zero.
func Reconstruct(e *PaymentEntity) *order.Order {
	o := &order.Order{
		PaymentID:  e.ID,
		GrandTotal: gateway.FromMinorUnits(e.Amount),
		Discount:   decimal.Zero,
	}

	if raw := e.Notes[order.NoteShipping]; raw != "" {
		var s order.Shipping
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			o.Shipping = s
		}
	}
	if o.Shipping.Email == "" {
		o.Shipping.Email = e.Email
	}
	if o.Shipping.Phone == "" {
		o.Shipping.Phone = e.Contact
	}

	if raw := e.Notes[order.NoteItems]; raw != "" {
		var items []cart.Line
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			o.Items = items
		}
	}

	o.Coupon = couponSummary(e.Notes)

	if raw := e.Notes[order.NoteDiscount]; raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil && !d.IsNegative() {
			o.Discount = d
			return o
		}
	}
	if o.Coupon != nil && o.Coupon.Discount != "" {
		if d, err := decimal.NewFromString(o.Coupon.Discount); err == nil && !d.IsNegative() {
			o.Discount = d
		}
	}
	return o
}

// couponSummary normalizes the two accepted coupon note encodings, a
// single JSON object under "coupon" or flat string keys, into one shape.
// Returns nil when no coupon was applied or nothing parses.
func couponSummary(notes map[string]string) *coupon.Summary {
	if raw := notes[order.NoteCoupon]; raw != "" {
		var s coupon.Summary
		if err := json.Unmarshal([]byte(raw), &s); err == nil && s.Code != "" {
			return &s
		}
	}

	if code := notes[noteCouponCode]; code != "" {
		return &coupon.Summary{
			Code:     code,
			Name:     notes[noteCouponName],
			Discount: notes[noteCouponDiscount],
		}
	}
	return nil
}
