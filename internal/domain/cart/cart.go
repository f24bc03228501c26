// Package cart models the client-resident shopping cart as an explicit
// aggregate: every mutation goes through a method and readers only ever see
// snapshots, so totals can be recomputed deterministically from the same
// lines the order intent is built from.
package cart

import (
	"github.com/shopspring/decimal"
)

// Line is a single cart entry. Name, price and image are snapshots taken at
// add-time: a later catalog edit does not retroactively change an open cart.
// The JSON field names are the wire names used in gateway notes and the
// legacy order payload.
type Line struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
	Image     string          `json:"img"`
}

// LineTotal returns price * quantity for this line.
func (l Line) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered collection of lines owned by a single session.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddLine adds the given line, merging quantities when the product is
// already present. Lines added with a non-positive quantity are ignored.
func (c *Cart) AddLine(line Line) {
	if line.Quantity <= 0 {
		return
	}
	for i := range c.lines {
		if c.lines[i].ProductID == line.ProductID {
			c.lines[i].Quantity += line.Quantity
			return
		}
	}
	c.lines = append(c.lines, line)
}

// ChangeQuantity adjusts a line's quantity by delta. A quantity reaching
// zero removes the line. Unknown product IDs are a no-op.
func (c *Cart) ChangeQuantity(productID int64, delta int) {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		c.lines[i].Quantity += delta
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return
	}
}

// Remove deletes the line for the given product ID.
func (c *Cart) Remove(productID int64) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Subtotal returns the sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.lines)
}

// Subtotal returns the sum of price * quantity across the given lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}
