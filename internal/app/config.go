package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (BASKET_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:5000" usage:"API server listen address"`
	DatabasePath string `default:"basket.db" usage:"SQLite database file path" flag:"database-path"`
	CouponsFile  string `default:"coupons.json" usage:"Path to the coupon definitions file" flag:"coupons-file"`
	Catalog      CatalogConfig
	Shipping     ShippingConfig
	Razorpay     RazorpayConfig
	SMTP         SMTPConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// CatalogConfig controls catalog serving behaviour.
type CatalogConfig struct {
	CacheTTL time.Duration `default:"5m" usage:"Catalog snapshot cache TTL" flag:"catalog-cache-ttl"`
}

// ShippingConfig controls the flat shipping fee policy.
type ShippingConfig struct {
	FreeAbove float64 `default:"400" usage:"Subtotal at or above which shipping is free" flag:"shipping-free-above"`
	Fee       float64 `default:"80" usage:"Flat shipping fee below the free threshold" flag:"shipping-fee"`
}

// RazorpayConfig holds payment gateway credentials and webhook settings.
type RazorpayConfig struct {
	KeyID           string `usage:"Razorpay key ID (BASKET_RAZORPAY_KEY_ID)" flag:"razorpay-key-id"`
	KeySecret       string `usage:"Razorpay key secret (BASKET_RAZORPAY_KEY_SECRET)" flag:"razorpay-key-secret"`
	WebhookSecret   string `usage:"Razorpay webhook signing secret (BASKET_RAZORPAY_WEBHOOK_SECRET)" flag:"razorpay-webhook-secret"`
	Timeout         int    `default:"10" usage:"Gateway request timeout in seconds" flag:"razorpay-timeout"`
	AllowTestBypass bool   `default:"false" usage:"Accept the development test signature on webhooks" flag:"razorpay-test-bypass"`
}

// SMTPConfig holds mail transport settings and notification addressing.
type SMTPConfig struct {
	Host       string        `default:"smtp.gmail.com" usage:"SMTP server host"`
	Port       int           `default:"587" usage:"SMTP server port"`
	Username   string        `usage:"SMTP auth username (BASKET_SMTP_USERNAME)"`
	Password   string        `usage:"SMTP auth password (BASKET_SMTP_PASSWORD)"`
	From       string        `usage:"Mail From address; defaults to the username" flag:"smtp-from"`
	AdminEmail string        `usage:"Address that receives new-order notifications" flag:"admin-email"`
	StoreName  string        `default:"The Local Basket" usage:"Store name shown in customer mail" flag:"store-name"`
	Timeout    time.Duration `default:"15s" usage:"Per-mail send timeout" flag:"smtp-timeout"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"15m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BASKET",
		Files:     []string{"config.yaml", "/etc/basket/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	if cfg.SMTP.AdminEmail == "" {
		cfg.SMTP.AdminEmail = cfg.SMTP.Username
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like PORT to the
// application's BASKET_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:5000" {
		c.Addr = "0.0.0.0:" + port
	}
}
