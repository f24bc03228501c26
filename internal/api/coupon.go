package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/localbasket/storefront/internal/domain/coupon"
)

// couponJSON is the public coupon wire shape.
type couponJSON struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	MaxDiscount float64 `json:"maxDiscount,omitempty"`
	MinPurchase float64 `json:"minPurchase"`
	ExpiresAt   string  `json:"expiresAt"`
	Message     string  `json:"message"`
}

// handleListCoupons returns the static coupon list as a bare array.
func (h *Handler) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons := h.coupons.List()
	out := make([]couponJSON, len(coupons))
	for i, c := range coupons {
		out[i] = couponJSON{
			Code:        c.Code,
			Name:        c.Name,
			Type:        string(c.Type),
			Value:       c.Value.InexactFloat64(),
			MaxDiscount: c.MaxDiscount.InexactFloat64(),
			MinPurchase: c.MinPurchase.InexactFloat64(),
			ExpiresAt:   c.ExpiresAt.UTC().Format(time.RFC3339),
			Message:     c.Message,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type applyCouponRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// handleApplyCoupon evaluates a coupon code against a cart subtotal. The
// three rejection reasons are distinct so the client can show the right
// prompt.
func (h *Handler) handleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	c, err := h.coupons.FindByCode(req.Code)
	if err == nil {
		var discount decimal.Decimal
		discount, err = coupon.Evaluate(req.Subtotal, c, h.now())
		if err == nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":  true,
				"discount": discount.InexactFloat64(),
				"coupon": coupon.Summary{
					Code:     c.Code,
					Name:     c.Name,
					Discount: discount.String(),
				},
				"message": c.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusBadRequest, map[string]any{
		"success": false,
		"error":   couponRejection(err, c),
	})
}

// couponRejection maps evaluation sentinels to user-facing messages.
func couponRejection(err error, c *coupon.Coupon) string {
	switch {
	case errors.Is(err, coupon.ErrExpired):
		return "This coupon has expired"
	case errors.Is(err, coupon.ErrMinPurchase):
		return fmt.Sprintf("Minimum purchase of ₹%s required", c.MinPurchase.StringFixed(0))
	default:
		return "Invalid coupon code"
	}
}
