// Package gateway adapts the Razorpay payment provider. It owns the key
// pair: the public key ID may be returned to callers for the hosted
// checkout, the secret never crosses this boundary.
package gateway

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an order is created for a non-positive
// amount.
var ErrInvalidAmount = errors.New("amount must be greater than 0")

// GatewayError wraps a provider-side failure. The provider message is
// carried through rather than swallowed so checkout alerts can show it.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Order is a provider-hosted order created for checkout. Amount is in minor
// units, as transmitted.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	KeyID    string
}

// Client creates orders against Razorpay.
type Client struct {
	rz    *razorpay.Client
	keyID string
}

// NewClient builds a gateway client. timeoutSeconds bounds each provider
// call.
func NewClient(keyID, keySecret string, timeoutSeconds int16) *Client {
	rz := razorpay.NewClient(keyID, keySecret)
	if timeoutSeconds > 0 {
		rz.SetTimeout(timeoutSeconds)
	}
	return &Client{rz: rz, keyID: keyID}
}

// CreateOrder creates a provider order for the given decimal currency
// amount and opaque notes bundle. The amount is converted to integer minor
// units exactly once, at this boundary.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string, notes map[string]string) (*Order, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	minor := MinorUnits(amount)

	noteData := make(map[string]interface{}, len(notes))
	for k, v := range notes {
		noteData[k] = v
	}

	body, err := c.rz.Order.Create(map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"notes":    noteData,
	}, nil)
	if err != nil {
		return nil, &GatewayError{Op: "create order", Err: err}
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, &GatewayError{Op: "create order", Err: errors.New("response missing order id")}
	}

	return &Order{
		ID:       id,
		Amount:   minor,
		Currency: currency,
		KeyID:    c.keyID,
	}, nil
}

// MinorUnits converts a decimal currency amount to integer minor units
// (e.g. rupees to paise), rounding half up so no unit of currency is lost
// to truncation.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts integer minor units back to a decimal currency
// amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}
