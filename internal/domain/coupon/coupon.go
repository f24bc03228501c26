package coupon

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFlat applies a fixed monetary discount capped at the subtotal.
	DiscountFlat DiscountType = "flat"
)

// The three rejection reasons are distinct sentinels so callers can surface
// different user-facing messages for each.
var (
	// ErrNotFound is returned when a coupon code is unknown or empty.
	ErrNotFound = errors.New("coupon not found")
	// ErrExpired is returned when a coupon is past its expiry timestamp.
	ErrExpired = errors.New("coupon expired")
	// ErrMinPurchase is returned when the cart subtotal does not meet the
	// coupon's minimum purchase threshold.
	ErrMinPurchase = errors.New("minimum purchase not met")
)

// Coupon defines a promotional code's discount behaviour and eligibility
// constraints. Coupons come from a static external file and are read-only at
// runtime; there is no redemption counting.
type Coupon struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Type        DiscountType    `json:"type"`
	Value       decimal.Decimal `json:"value"`
	MaxDiscount decimal.Decimal `json:"max_discount"` // zero means no cap
	MinPurchase decimal.Decimal `json:"min_purchase"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Message     string          `json:"message"`
}

// Summary is the compact coupon record carried through the gateway notes
// bundle and echoed back in webhook payloads. All fields round-trip through
// string serialization.
type Summary struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Discount string `json:"discount"`
}
