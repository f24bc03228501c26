package order

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/localbasket/storefront/internal/domain/cart"
	"github.com/localbasket/storefront/internal/domain/coupon"
)

// Notes bundle keys. The bundle is the only persistence mechanism for order
// context between order creation and payment confirmation: the gateway
// echoes it back verbatim in the webhook payload.
const (
	NoteShipping = "shipping"
	NoteItems    = "items"
	NoteCoupon   = "coupon"
	NoteDiscount = "discount"
)

// ErrEmptyCart is returned when an intent is built from a cart with no lines.
var ErrEmptyCart = errors.New("cart has no items")

// ValidationError reports the first shipping field that failed validation.
// It is user-correctable: the caller re-prompts rather than submitting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	postalPattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// Validate checks all shipping fields and returns a ValidationError for the
// first failing one.
func (s Shipping) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(s.Email) == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if !emailPattern.MatchString(s.Email) {
		return &ValidationError{Field: "email", Reason: "not a valid email address"}
	}
	if strings.TrimSpace(s.Address) == "" {
		return &ValidationError{Field: "address", Reason: "required"}
	}
	if !phonePattern.MatchString(s.Phone) {
		return &ValidationError{Field: "phone", Reason: "must be a 10-digit mobile number"}
	}
	if !postalPattern.MatchString(s.PostalCode) {
		return &ValidationError{Field: "postalCode", Reason: "must be exactly 6 digits"}
	}
	return nil
}

// Intent is the assembled payment-order request: the amount to charge and
// the opaque notes bundle the gateway round-trips.
type Intent struct {
	Amount   decimal.Decimal
	Currency string
	Notes    map[string]string
}

// BuildIntent validates the shipping record and serializes cart, shipping
// and coupon state into the notes bundle. The gateway transports note values
// as strings, so composite fields are JSON-stringified. BuildIntent performs
// no I/O and does not contact the gateway.
func BuildIntent(
	lines []cart.Line,
	shipping Shipping,
	applied *coupon.Summary,
	discount decimal.Decimal,
	policy cart.ShippingPolicy,
	currency string,
) (*Intent, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	shippingJSON, err := json.Marshal(shipping)
	if err != nil {
		return nil, errors.Wrap(err, "marshal shipping")
	}
	itemsJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, errors.Wrap(err, "marshal items")
	}

	notes := map[string]string{
		NoteShipping: string(shippingJSON),
		NoteItems:    string(itemsJSON),
		NoteDiscount: discount.String(),
	}
	if applied != nil {
		couponJSON, err := json.Marshal(applied)
		if err != nil {
			return nil, errors.Wrap(err, "marshal coupon")
		}
		notes[NoteCoupon] = string(couponJSON)
	}

	totals := cart.Calculate(lines, discount, policy)

	return &Intent{
		Amount:   totals.GrandTotal,
		Currency: currency,
		Notes:    notes,
	}, nil
}
