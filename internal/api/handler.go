// Package api implements the storefront HTTP surface: catalog reads,
// coupon evaluation, payment-order creation, the gateway webhook, and the
// legacy direct order path.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/localbasket/storefront/internal/catalog"
	"github.com/localbasket/storefront/internal/domain/cart"
	"github.com/localbasket/storefront/internal/domain/coupon"
	"github.com/localbasket/storefront/internal/domain/order"
	"github.com/localbasket/storefront/internal/gateway"
	"github.com/localbasket/storefront/internal/notify"
	"github.com/localbasket/storefront/internal/webhook"
)

// maxBodyBytes bounds request bodies; the storefront payloads are small.
const maxBodyBytes = 64 << 10

// OrderCreator creates provider-hosted payment orders.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string, notes map[string]string) (*gateway.Order, error)
}

// Enqueuer hands a canonical order to the notification worker.
type Enqueuer interface {
	Enqueue(o *order.Order)
}

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// Currency is the checkout currency code.
	Currency string
	// StoreName appears in customer-facing mail.
	StoreName string
	// AdminEmail receives new-order notifications on the legacy path.
	AdminEmail string
	// SendTimeout bounds the synchronous legacy mail send.
	SendTimeout time.Duration
	// Shipping is the flat-fee shipping policy applied to server-side totals.
	Shipping cart.ShippingPolicy
}

// Handler serves the storefront API, delegating business logic to the
// injected domain dependencies.
type Handler struct {
	cfg        HandlerConfig
	catalog    *catalog.Cache
	coupons    coupon.Store
	gateway    OrderCreator
	verifier   *webhook.Verifier
	dispatcher Enqueuer
	mailer     notify.Mailer
	now        func() time.Time
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	cfg HandlerConfig,
	cache *catalog.Cache,
	coupons coupon.Store,
	orders OrderCreator,
	verifier *webhook.Verifier,
	dispatcher Enqueuer,
	mailer notify.Mailer,
) *Handler {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if cfg.Shipping.Fee.IsZero() && cfg.Shipping.FreeAbove.IsZero() {
		cfg.Shipping = cart.DefaultShippingPolicy()
	}
	return &Handler{
		cfg:        cfg,
		catalog:    cache,
		coupons:    coupons,
		gateway:    orders,
		verifier:   verifier,
		dispatcher: dispatcher,
		mailer:     mailer,
		now:        time.Now,
	}
}

// Routes registers all endpoints on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/coupons", h.handleListCoupons)
	mux.HandleFunc("POST /api/apply-coupon", h.handleApplyCoupon)
	mux.HandleFunc("POST /create-razorpay-order", h.handleCreateOrder)
	mux.HandleFunc("POST /razorpay-webhook", h.handleWebhook)
	mux.HandleFunc("POST /send-order", h.handleSendOrder)
	mux.HandleFunc("GET /health", h.handleHealth)
}

// handleHealth is the liveness probe, kept in the original response shape.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"service":   "storefront-api",
		"version":   "1.0.0",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a size-limited JSON body into dst. Numbers are kept as
// json.Number so money amounts parse into decimals without float drift.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(dst)
}

func logFrom(r *http.Request) *zap.Logger {
	return zctx.From(r.Context())
}
