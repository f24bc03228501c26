package api

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/localbasket/storefront/internal/domain/cart"
	"github.com/localbasket/storefront/internal/domain/coupon"
	"github.com/localbasket/storefront/internal/domain/order"
	"github.com/localbasket/storefront/internal/gateway"
	"github.com/localbasket/storefront/internal/notify"
)

type createOrderRequest struct {
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes"`

	// Structured checkout fields. When items are present the server builds
	// the intent itself: totals are recomputed, the coupon re-evaluated, and
	// the client amount ignored.
	Items      []cart.Line     `json:"items"`
	Shipping   *order.Shipping `json:"shipping"`
	CouponCode string          `json:"couponCode"`
}

// handleCreateOrder creates a provider-hosted payment order. Clients either
// post a precomputed amount with an opaque notes bundle, or post cart lines
// and shipping and let the server assemble the intent.
func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}
	if req.Currency == "" {
		req.Currency = h.cfg.Currency
	}

	amount, notes := req.Amount, req.Notes
	if len(req.Items) > 0 {
		intent, err := h.buildIntent(&req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		amount, notes = intent.Amount, intent.Notes
	}

	o, err := h.gateway.CreateOrder(r.Context(), amount, req.Currency, notes)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidAmount) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "Invalid amount",
			})
			return
		}
		logFrom(r).Error("create gateway order", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order": map[string]any{
			"id":       o.ID,
			"amount":   o.Amount,
			"currency": o.Currency,
			"key_id":   o.KeyID,
		},
	})
}

// buildIntent recomputes totals from the submitted cart lines, re-evaluates
// the coupon code if one was sent, and assembles the notes bundle.
func (h *Handler) buildIntent(req *createOrderRequest) (*order.Intent, error) {
	var shipping order.Shipping
	if req.Shipping != nil {
		shipping = *req.Shipping
	}

	var (
		applied  *coupon.Summary
		discount decimal.Decimal
	)
	if req.CouponCode != "" {
		c, err := h.coupons.FindByCode(req.CouponCode)
		if err != nil {
			return nil, errors.New("Invalid coupon code")
		}
		discount, err = coupon.Evaluate(cart.Subtotal(req.Items), c, h.now())
		if err != nil {
			return nil, errors.New(couponRejection(err, c))
		}
		applied = &coupon.Summary{
			Code:     c.Code,
			Name:     c.Name,
			Discount: discount.String(),
		}
	}

	return order.BuildIntent(req.Items, shipping, applied, discount, h.cfg.Shipping, req.Currency)
}

type sendOrderRequest struct {
	Items      []cart.Line     `json:"items"`
	Shipping   order.Shipping  `json:"shipping"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Coupon     *coupon.Summary `json:"coupon"`
	Discount   decimal.Decimal `json:"discount"`
	PaymentID  string          `json:"paymentId"`
}

// handleSendOrder is the legacy direct path, superseded by the webhook
// flow: the client posts the completed order and both confirmation mails
// are sent synchronously.
func (h *Handler) handleSendOrder(w http.ResponseWriter, r *http.Request) {
	var req sendOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "No items in order",
		})
		return
	}

	o := &order.Order{
		PaymentID:  req.PaymentID,
		GrandTotal: req.GrandTotal,
		Shipping:   req.Shipping,
		Items:      req.Items,
		Coupon:     req.Coupon,
		Discount:   req.Discount,
	}

	messageID, err := h.sendOrderMail(r.Context(), o)
	if err != nil {
		logFrom(r).Error("send order mail", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Error processing order",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Order received successfully!",
		"messageId": messageID,
	})
}

// sendOrderMail delivers the admin mail and, best-effort, the customer
// mail. The admin message ID is the one reported back.
func (h *Handler) sendOrderMail(ctx context.Context, o *order.Order) (string, error) {
	sendCtx, cancel := context.WithTimeout(ctx, h.cfg.SendTimeout)
	defer cancel()

	admin, err := notify.AdminMail(o, h.cfg.AdminEmail)
	if err != nil {
		return "", err
	}
	messageID, err := h.mailer.Send(sendCtx, admin)
	if err != nil {
		return "", err
	}

	if o.Shipping.Email != "" {
		customer, err := notify.CustomerMail(o, h.cfg.StoreName)
		if err == nil {
			if _, err := h.mailer.Send(sendCtx, customer); err != nil {
				zctx.From(ctx).Warn("send customer mail", zap.Error(err))
			}
		}
	}
	return messageID, nil
}
