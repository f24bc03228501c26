// Package notify delivers order-confirmation email. Dispatch is an explicit
// background worker with a bounded queue: enqueueing never blocks the
// webhook response, and a failed send is logged, never propagated and never
// retried.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/localbasket/storefront/internal/domain/order"
)

// Message is a fully-rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends a single message and returns a provider message ID.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Config controls dispatcher behaviour.
type Config struct {
	// AdminEmail receives the new-order notification.
	AdminEmail string
	// StoreName is used in the customer-facing sender name and templates.
	StoreName string
	// SendTimeout bounds each individual send.
	SendTimeout time.Duration
	// QueueSize bounds the pending-order queue. Overflow is dropped with a
	// logged error rather than blocking the caller.
	QueueSize int
}

// Dispatcher consumes canonical order records and sends the admin and
// customer confirmation mails for each.
type Dispatcher struct {
	cfg    Config
	mailer Mailer
	lg     *zap.Logger
	queue  chan *order.Order
}

// NewDispatcher creates a Dispatcher. Run must be started for queued orders
// to be delivered.
func NewDispatcher(mailer Mailer, cfg Config, lg *zap.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "Our Store"
	}
	return &Dispatcher{
		cfg:    cfg,
		mailer: mailer,
		lg:     lg,
		queue:  make(chan *order.Order, cfg.QueueSize),
	}
}

// Enqueue hands an order to the background worker. It never blocks: when
// the queue is full the order is dropped and the drop is logged.
func (d *Dispatcher) Enqueue(o *order.Order) {
	select {
	case d.queue <- o:
	default:
		d.lg.Error("notification queue full, dropping order",
			zap.String("payment_id", o.PaymentID))
	}
}

// Run drains the queue until ctx is cancelled. It always returns nil: mail
// failures are terminal for the individual message only.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case o := <-d.queue:
			d.dispatch(ctx, o)
		}
	}
}

// dispatch sends both confirmation mails for one order, logging each
// outcome. Errors stop with the log line.
func (d *Dispatcher) dispatch(ctx context.Context, o *order.Order) {
	lg := d.lg.With(zap.String("payment_id", o.PaymentID))

	admin, err := AdminMail(o, d.cfg.AdminEmail)
	if err != nil {
		lg.Error("render admin mail", zap.Error(err))
	} else {
		d.send(ctx, lg, "admin", admin)
	}

	if o.Shipping.Email == "" {
		lg.Warn("order has no customer email, skipping customer mail")
		return
	}
	customer, err := CustomerMail(o, d.cfg.StoreName)
	if err != nil {
		lg.Error("render customer mail", zap.Error(err))
		return
	}
	d.send(ctx, lg, "customer", customer)
}

func (d *Dispatcher) send(ctx context.Context, lg *zap.Logger, kind string, msg Message) {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	id, err := d.mailer.Send(sendCtx, msg)
	if err != nil {
		lg.Error("send mail failed",
			zap.String("kind", kind),
			zap.String("to", msg.To),
			zap.Error(err))
		return
	}
	lg.Info("mail sent",
		zap.String("kind", kind),
		zap.String("to", msg.To),
		zap.String("message_id", id))
}
