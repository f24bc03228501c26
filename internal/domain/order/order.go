// Package order holds the checkout-side order types: the shipping record,
// the order intent sent to the payment gateway, and the canonical order
// record reconstructed from a verified webhook.
package order

import (
	"github.com/shopspring/decimal"

	"github.com/localbasket/storefront/internal/domain/cart"
	"github.com/localbasket/storefront/internal/domain/coupon"
)

// Shipping is the customer-entered delivery record.
type Shipping struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postalCode"`
}

// Order is the canonical order record. It is never stored: it exists only
// for the duration of a webhook call (or a legacy direct send) and is
// consumed immediately by the notification dispatcher.
type Order struct {
	PaymentID  string
	GrandTotal decimal.Decimal
	Shipping   Shipping
	Items      []cart.Line
	Coupon     *coupon.Summary
	Discount   decimal.Decimal
}
