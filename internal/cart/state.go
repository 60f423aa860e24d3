package cart

import (
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// Line is one product's entry in the cart.
type Line struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Price    pricing.Money `json:"price"`
	Image    string        `json:"image"`
	Quantity int           `json:"quantity"`
}

// Subtotal returns price multiplied by quantity.
func (l Line) Subtotal() pricing.Money {
	return pricing.LineSubtotal(l.Price, l.Quantity)
}

// Cart is an ordered list of lines, first added first. Each ID appears at most
// once and every stored line has a quantity of at least one.
//
// Cart values are immutable from the caller's perspective: the transition
// functions below return a fresh Cart and never modify their input.
type Cart struct {
	Lines []Line `json:"lines"`
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Line returns the line for id.
func (c Cart) Line(id string) (Line, bool) {
	if i := c.index(id); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// Items converts lines into pricing inputs.
func (c Cart) Items() []pricing.Item {
	items := make([]pricing.Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, pricing.Item{Qty: l.Quantity, UnitPrice: l.Price})
	}
	return items
}

// Totals derives every figure from the cart and the two summary inputs.
func (c Cart) Totals(discount, payment pricing.Money) pricing.Totals {
	return pricing.Compute(c.Items(), discount, payment)
}

func (c Cart) index(id string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// Add increments the quantity of an existing line or appends a new one.
func Add(c Cart, id, name string, price pricing.Money, image string) (Cart, Signal) {
	next := c.clone()
	if i := next.index(id); i >= 0 {
		next.Lines[i].Quantity++
		return next, SignalQuantityUpdated
	}
	next.Lines = append(next.Lines, Line{ID: id, Name: name, Price: price, Image: image, Quantity: 1})
	return next, SignalItemAdded
}

// Remove deletes the line for id. A missing id leaves the cart untouched but
// still reports the removal.
func Remove(c Cart, id string) (Cart, Signal) {
	i := c.index(id)
	if i < 0 {
		return c, SignalItemRemoved
	}
	next := Cart{Lines: make([]Line, 0, len(c.Lines)-1)}
	next.Lines = append(next.Lines, c.Lines[:i]...)
	next.Lines = append(next.Lines, c.Lines[i+1:]...)
	return next, SignalItemRemoved
}

// Adjust shifts the quantity of id by delta, clamped at zero. A line that
// reaches zero is removed.
func Adjust(c Cart, id string, delta int) (Cart, Signal) {
	i := c.index(id)
	if i < 0 {
		return c, SignalNone
	}
	qty := max(0, c.Lines[i].Quantity+delta)
	if qty == 0 {
		return Remove(c, id)
	}
	next := c.clone()
	next.Lines[i].Quantity = qty
	return next, SignalQuantityChanged
}
