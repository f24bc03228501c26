package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// created by the out-of-band seeding process and are read-only at runtime;
// the checkout flow never mutates them.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Image       string
}

// InStock reports whether the product has any quantity on hand. This gates
// add-to-cart eligibility only; stock is never decremented transactionally.
func (p Product) InStock() bool {
	return p.Quantity > 0
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
}
