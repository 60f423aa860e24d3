package cart

import "github.com/noah-isme/toko-storefront/internal/pricing"

// LineView is a display-ready cart line.
type LineView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Subtotal string `json:"subtotal"`
}

// Snapshot is the view model for the cart drawer and the order summary.
type Snapshot struct {
	Lines         []LineView     `json:"lines"`
	Count         int            `json:"count"`
	RunningTotal  string         `json:"runningTotal"`
	TotalItems    int            `json:"totalItems"`
	Subtotal      string         `json:"subtotal"`
	FinalSubtotal string         `json:"finalSubtotal"`
	Discount      string         `json:"discount"`
	FinalTotal    string         `json:"finalTotal"`
	Change        string         `json:"change"`
	DiscountInput string         `json:"discountInput"`
	PaymentInput  string         `json:"paymentInput"`
	Open          bool           `json:"open"`
	Empty         bool           `json:"empty"`
	Totals        pricing.Totals `json:"-"`
}

// Snapshot builds the current view model. It has no side effects.
func (m *Manager) Snapshot() Snapshot {
	totals := m.Totals()
	lines := make([]LineView, 0, len(m.cart.Lines))
	for _, l := range m.cart.Lines {
		lines = append(lines, LineView{
			ID:       l.ID,
			Name:     l.Name,
			Image:    l.Image,
			Quantity: l.Quantity,
			Price:    m.format.Format(l.Price),
			Subtotal: m.format.Format(l.Subtotal()),
		})
	}
	subtotal := m.format.Format(totals.Subtotal)
	return Snapshot{
		Lines:         lines,
		Count:         totals.TotalItems,
		RunningTotal:  subtotal,
		TotalItems:    totals.TotalItems,
		Subtotal:      subtotal,
		FinalSubtotal: subtotal,
		Discount:      m.format.Format(totals.Discount),
		FinalTotal:    m.format.Format(totals.FinalTotal),
		Change:        m.format.Format(totals.Change),
		DiscountInput: m.discount,
		PaymentInput:  m.payment,
		Open:          m.open,
		Empty:         m.cart.IsEmpty(),
		Totals:        totals,
	}
}
