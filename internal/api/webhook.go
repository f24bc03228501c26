package api

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/localbasket/storefront/internal/webhook"
)

// handleWebhook receives payment gateway events. The signature is checked
// over the raw body before any parsing; a rejected signature never reaches
// the payload decoder. Successful requests are acknowledged immediately and
// notification work happens off the request path.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error",
			"error":  "unreadable body",
		})
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if err := h.verifier.Verify(body, signature); err != nil {
		logFrom(r).Warn("webhook signature rejected", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "invalid signature",
		})
		return
	}

	entity, err := webhook.ExtractPayment(body)
	if err != nil {
		logFrom(r).Warn("webhook payload rejected", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	o := webhook.Reconstruct(entity)
	logFrom(r).Info("webhook accepted",
		zap.String("payment_id", o.PaymentID),
		zap.String("grand_total", o.GrandTotal.String()),
	)
	h.dispatcher.Enqueue(o)

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
