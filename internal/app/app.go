// Package app wires the storefront together: configuration, database,
// coupon store, payment gateway, mailer, and the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/localbasket/storefront/internal/api"
	"github.com/localbasket/storefront/internal/catalog"
	"github.com/localbasket/storefront/internal/domain/cart"
	"github.com/localbasket/storefront/internal/domain/coupon"
	"github.com/localbasket/storefront/internal/gateway"
	"github.com/localbasket/storefront/internal/notify"
	"github.com/localbasket/storefront/internal/storage/sqlite"
	"github.com/localbasket/storefront/internal/webhook"
	"github.com/localbasket/storefront/pkg/health"
	"github.com/localbasket/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and the notification
// worker, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// SQLite database + migrations.
	conn, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer conn.Close()

	if err := sqlite.RunMigrations(ctx, conn); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("sqlite", 5*time.Second, health.DatabasePingCheck(conn))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Catalog.
	productRepo := sqlite.NewProductRepository(conn)
	catalogCache := catalog.New(productRepo, cfg.Catalog.CacheTTL)

	// Coupons.
	coupons, err := coupon.LoadFile(cfg.CouponsFile)
	if err != nil {
		return errors.Wrap(err, "load coupons")
	}
	lg.Info("Coupons loaded", zap.Int("count", len(coupons.List())))

	// Payment gateway and webhook verification.
	rz := gateway.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, int16(cfg.Razorpay.Timeout))
	verifier := webhook.NewVerifier(cfg.Razorpay.WebhookSecret, cfg.Razorpay.AllowTestBypass)
	if cfg.Razorpay.AllowTestBypass {
		lg.Warn("Webhook test signature bypass is enabled")
	}

	// Mail.
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.StoreName,
	})
	dispatcher := notify.NewDispatcher(mailer, notify.Config{
		AdminEmail:  cfg.SMTP.AdminEmail,
		StoreName:   cfg.SMTP.StoreName,
		SendTimeout: cfg.SMTP.Timeout,
	}, lg.Named("notify"))

	// HTTP handlers.
	h := api.NewHandler(
		api.HandlerConfig{
			StoreName:   cfg.SMTP.StoreName,
			AdminEmail:  cfg.SMTP.AdminEmail,
			SendTimeout: cfg.SMTP.Timeout,
			Shipping: cart.ShippingPolicy{
				FreeAbove: decimal.NewFromFloat(cfg.Shipping.FreeAbove),
				Fee:       decimal.NewFromFloat(cfg.Shipping.Fee),
			},
		},
		catalogCache,
		coupons,
		rz,
		verifier,
		dispatcher,
		mailer,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Routes(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-Razorpay-Signature"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	return g.Wait()
}
