package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localbasket/storefront/internal/domain/cart"
	"github.com/localbasket/storefront/internal/domain/coupon"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func validShipping() Shipping {
	return Shipping{
		Name:       "Asha Rao",
		Email:      "asha@example.com",
		Address:    "12 MG Road, Bengaluru",
		Phone:      "9876543210",
		PostalCode: "560001",
	}
}

func TestShippingValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Shipping)
		wantField string
	}{
		{"valid", func(s *Shipping) {}, ""},
		{"missing name", func(s *Shipping) { s.Name = "  " }, "name"},
		{"missing email", func(s *Shipping) { s.Email = "" }, "email"},
		{"malformed email", func(s *Shipping) { s.Email = "not-an-email" }, "email"},
		{"email with spaces", func(s *Shipping) { s.Email = "a b@example.com" }, "email"},
		{"missing address", func(s *Shipping) { s.Address = "" }, "address"},
		{"phone too short", func(s *Shipping) { s.Phone = "98765" }, "phone"},
		{"phone with bad leading digit", func(s *Shipping) { s.Phone = "1876543210" }, "phone"},
		{"phone with letters", func(s *Shipping) { s.Phone = "987654321x" }, "phone"},
		{"postal code too short", func(s *Shipping) { s.PostalCode = "5600" }, "postalCode"},
		{"postal code with letters", func(s *Shipping) { s.PostalCode = "56000a" }, "postalCode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validShipping()
			tt.mutate(&s)

			err := s.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestBuildIntent(t *testing.T) {
	policy := cart.DefaultShippingPolicy()
	lines := []cart.Line{
		{ProductID: 1, Name: "Rice", Price: d("180"), Quantity: 2, Image: "/images/rice.jpg"},
	}

	t.Run("empty cart", func(t *testing.T) {
		_, err := BuildIntent(nil, validShipping(), nil, decimal.Zero, policy, "INR")
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("invalid shipping", func(t *testing.T) {
		s := validShipping()
		s.Phone = "123"
		_, err := BuildIntent(lines, s, nil, decimal.Zero, policy, "INR")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("amount follows totals", func(t *testing.T) {
		intent, err := BuildIntent(lines, validShipping(), nil, decimal.Zero, policy, "INR")
		require.NoError(t, err)

		// 360 subtotal + 80 shipping, no discount.
		assert.True(t, d("440").Equal(intent.Amount), "got %s", intent.Amount)
		assert.Equal(t, "INR", intent.Currency)
	})

	t.Run("notes round-trip", func(t *testing.T) {
		applied := &coupon.Summary{Code: "XMAS25", Name: "Christmas Special", Discount: "90"}

		intent, err := BuildIntent(lines, validShipping(), applied, d("90"), policy, "INR")
		require.NoError(t, err)

		var gotShipping Shipping
		require.NoError(t, json.Unmarshal([]byte(intent.Notes[NoteShipping]), &gotShipping))
		assert.Equal(t, validShipping(), gotShipping)

		var gotItems []cart.Line
		require.NoError(t, json.Unmarshal([]byte(intent.Notes[NoteItems]), &gotItems))
		require.Len(t, gotItems, 1)
		assert.Equal(t, int64(1), gotItems[0].ProductID)
		assert.True(t, d("180").Equal(gotItems[0].Price))

		var gotCoupon coupon.Summary
		require.NoError(t, json.Unmarshal([]byte(intent.Notes[NoteCoupon]), &gotCoupon))
		assert.Equal(t, *applied, gotCoupon)

		assert.Equal(t, "90", intent.Notes[NoteDiscount])

		// 360 subtotal + 80 shipping - 90 discount.
		assert.True(t, d("350").Equal(intent.Amount), "got %s", intent.Amount)
	})

	t.Run("no coupon omits the coupon note", func(t *testing.T) {
		intent, err := BuildIntent(lines, validShipping(), nil, decimal.Zero, policy, "INR")
		require.NoError(t, err)

		_, ok := intent.Notes[NoteCoupon]
		assert.False(t, ok)
	})
}
