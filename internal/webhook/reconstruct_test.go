package webhook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localbasket/storefront/internal/domain/order"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestReconstructFullNotes(t *testing.T) {
	e := &PaymentEntity{
		ID:     "pay_full",
		Amount: 35000,
		Notes: map[string]string{
			order.NoteShipping: `{"name":"Asha Rao","email":"asha@example.com","address":"12 MG Road","phone":"9876543210","postalCode":"560001"}`,
			order.NoteItems:    `[{"id":1,"name":"Rice","price":"180","qty":2,"img":"/images/rice.jpg"}]`,
			order.NoteCoupon:   `{"code":"XMAS25","name":"Christmas Special","discount":"90"}`,
			order.NoteDiscount: "90",
		},
	}

	o := Reconstruct(e)

	assert.Equal(t, "pay_full", o.PaymentID)
	assert.True(t, d("350").Equal(o.GrandTotal))
	assert.Equal(t, "Asha Rao", o.Shipping.Name)
	assert.Equal(t, "560001", o.Shipping.PostalCode)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(1), o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	require.NotNil(t, o.Coupon)
	assert.Equal(t, "XMAS25", o.Coupon.Code)
	assert.True(t, d("90").Equal(o.Discount))
}

func TestReconstructDegradesGracefully(t *testing.T) {
	t.Run("malformed shipping falls back to entity contact fields", func(t *testing.T) {
		e := &PaymentEntity{
			ID:      "pay_bad_ship",
			Amount:  1000,
			Email:   "fallback@example.com",
			Contact: "9876543210",
			Notes: map[string]string{
				order.NoteShipping: `{broken json`,
			},
		}

		o := Reconstruct(e)

		assert.Equal(t, "fallback@example.com", o.Shipping.Email)
		assert.Equal(t, "9876543210", o.Shipping.Phone)
		assert.Empty(t, o.Shipping.Name)
	})

	t.Run("malformed items yields empty item list", func(t *testing.T) {
		e := &PaymentEntity{
			ID:     "pay_bad_items",
			Amount: 1000,
			Notes:  map[string]string{order.NoteItems: `not an array`},
		}

		o := Reconstruct(e)

		assert.Empty(t, o.Items)
	})

	t.Run("malformed coupon yields zero discount without panic", func(t *testing.T) {
		e := &PaymentEntity{
			ID:     "pay_bad_coupon",
			Amount: 1000,
			Notes:  map[string]string{order.NoteCoupon: `{{{`},
		}

		o := Reconstruct(e)

		assert.Nil(t, o.Coupon)
		assert.True(t, o.Discount.IsZero())
	})

	t.Run("no notes at all", func(t *testing.T) {
		e := &PaymentEntity{ID: "pay_bare", Amount: 500, Notes: map[string]string{}}

		o := Reconstruct(e)

		assert.Equal(t, "pay_bare", o.PaymentID)
		assert.True(t, d("5").Equal(o.GrandTotal))
		assert.True(t, o.Discount.IsZero())
		assert.Nil(t, o.Coupon)
	})
}

func TestReconstructDiscountPrecedence(t *testing.T) {
	t.Run("explicit discount note wins over coupon discount", func(t *testing.T) {
		e := &PaymentEntity{
			ID:     "pay_p1",
			Amount: 1000,
			Notes: map[string]string{
				order.NoteDiscount: "25",
				order.NoteCoupon:   `{"code":"X","discount":"99"}`,
			},
		}

		o := Reconstruct(e)
		assert.True(t, d("25").Equal(o.Discount))
	})

	t.Run("coupon discount used when explicit note missing", func(t *testing.T) {
		e := &PaymentEntity{
			ID:     "pay_p2",
			Amount: 1000,
			Notes:  map[string]string{order.NoteCoupon: `{"code":"X","discount":"40"}`},
		}

		o := Reconstruct(e)
		assert.True(t, d("40").Equal(o.Discount))
	})

	t.Run("negative discount rejected", func(t *testing.T) {
		e := &PaymentEntity{
			ID:     "pay_p3",
			Amount: 1000,
			Notes:  map[string]string{order.NoteDiscount: "-10"},
		}

		o := Reconstruct(e)
		assert.True(t, o.Discount.IsZero())
	})
}

func TestReconstructFlatCouponKeys(t *testing.T) {
	e := &PaymentEntity{
		ID:     "pay_flat",
		Amount: 1000,
		Notes: map[string]string{
			"coupon_code":     "WELCOME50",
			"coupon_name":     "Welcome Offer",
			"coupon_discount": "50",
		},
	}

	o := Reconstruct(e)

	require.NotNil(t, o.Coupon)
	assert.Equal(t, "WELCOME50", o.Coupon.Code)
	assert.Equal(t, "Welcome Offer", o.Coupon.Name)
	assert.True(t, d("50").Equal(o.Discount))
}

func TestReconstructCouponObjectNeedsCode(t *testing.T) {
	e := &PaymentEntity{
		ID:     "pay_nocode",
		Amount: 1000,
		Notes:  map[string]string{order.NoteCoupon: `{"name":"Mystery","discount":"10"}`},
	}

	o := Reconstruct(e)

	assert.Nil(t, o.Coupon)
	assert.True(t, o.Discount.IsZero())
}
