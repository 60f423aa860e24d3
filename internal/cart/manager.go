package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

const (
	clearPrompt   = "Are you sure you want to clear your order?"
	receiptHeader = "Thank you for your purchase!"
)

// Prompter is the blocking dialog collaborator.
type Prompter interface {
	Confirm(message string) bool
	Alert(message string)
}

// Renderer receives a fresh view model after every change.
type Renderer interface {
	Render(Snapshot)
}

// Publisher raises signals to the rest of the storefront.
type Publisher interface {
	Emit(ctx context.Context, topic, message string, payload any) (events.Event, error)
}

// Config wires a Manager to its collaborators. Every field is optional.
type Config struct {
	Prompter  Prompter
	Renderer  Renderer
	Events    Publisher
	Formatter pricing.Formatter
	Logger    *zerolog.Logger
	Now       func() time.Time
}

// Receipt summarises a completed checkout.
type Receipt struct {
	Lines   []Line         `json:"lines"`
	Totals  pricing.Totals `json:"-"`
	Message string         `json:"message"`
	At      time.Time      `json:"at"`
}

// Manager owns one visitor's cart, the discount and payment inputs, and the
// open state of the cart view. It is not safe for concurrent use; callers
// serialise events (see session.Workspace).
type Manager struct {
	cart     Cart
	discount string
	payment  string
	open     bool

	prompter Prompter
	renderer Renderer
	events   Publisher
	format   pricing.Formatter
	logger   zerolog.Logger
	now      func() time.Time
}

// NewManager constructs a Manager with an empty cart.
func NewManager(cfg Config) *Manager {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "cart").Logger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		prompter: cfg.Prompter,
		renderer: cfg.Renderer,
		events:   cfg.Events,
		format:   cfg.Formatter,
		logger:   logger,
		now:      now,
	}
}

// UsePrompter swaps the dialog collaborator, typically once per input event.
func (m *Manager) UsePrompter(p Prompter) { m.prompter = p }

// Cart returns the current cart value.
func (m *Manager) Cart() Cart { return m.cart }

// Inputs returns the raw discount and payment inputs.
func (m *Manager) Inputs() (discount, payment string) { return m.discount, m.payment }

// IsOpen reports whether the cart view is shown.
func (m *Manager) IsOpen() bool { return m.open }

// Totals derives the current figures.
func (m *Manager) Totals() pricing.Totals {
	return m.cart.Totals(pricing.ParseAmount(m.discount), pricing.ParseAmount(m.payment))
}

// AddItem adds one unit of a product.
func (m *Manager) AddItem(ctx context.Context, id, name string, price pricing.Money, image string) Signal {
	next, sig := Add(m.cart, id, name, price, image)
	m.cart = next
	m.logger.Debug().Str("item_id", id).Str("signal", sig.Topic).Msg("add item")
	m.RecomputeSummary()
	m.publish(ctx, sig, map[string]any{"id": id})
	return sig
}

// RemoveItem deletes the line for id. Unknown ids are ignored.
func (m *Manager) RemoveItem(ctx context.Context, id string) Signal {
	next, sig := Remove(m.cart, id)
	m.cart = next
	m.logger.Debug().Str("item_id", id).Msg("remove item")
	m.RecomputeSummary()
	m.publish(ctx, sig, map[string]any{"id": id})
	return sig
}

// UpdateQuantity shifts a line's quantity by delta, removing it at zero.
func (m *Manager) UpdateQuantity(ctx context.Context, id string, delta int) Signal {
	next, sig := Adjust(m.cart, id, delta)
	if sig.IsZero() {
		return sig
	}
	m.cart = next
	m.logger.Debug().Str("item_id", id).Int("delta", delta).Str("signal", sig.Topic).Msg("update quantity")
	m.RecomputeSummary()
	m.publish(ctx, sig, map[string]any{"id": id, "delta": delta})
	return sig
}

// SetDiscount records the raw discount input and recomputes.
func (m *Manager) SetDiscount(raw string) {
	m.discount = raw
	m.RecomputeSummary()
}

// SetPayment records the raw payment input and recomputes.
func (m *Manager) SetPayment(raw string) {
	m.payment = raw
	m.RecomputeSummary()
}

// Clear empties the cart after the visitor confirms.
func (m *Manager) Clear(ctx context.Context) Signal {
	if m.cart.IsEmpty() {
		m.publish(ctx, SignalAlreadyEmpty, nil)
		return SignalAlreadyEmpty
	}
	if m.prompter == nil || !m.prompter.Confirm(clearPrompt) {
		m.logger.Debug().Msg("clear declined")
		return SignalNone
	}
	m.reset()
	m.RecomputeSummary()
	m.publish(ctx, SignalCleared, nil)
	return SignalCleared
}

// Checkout shows the receipt, then empties the cart, resets the inputs and
// closes the cart view. It reports false when the cart was empty.
func (m *Manager) Checkout(ctx context.Context) (Receipt, bool) {
	if m.cart.IsEmpty() {
		m.publish(ctx, SignalCartEmpty, nil)
		return Receipt{}, false
	}
	totals := m.cart.Totals(pricing.ParseAmount(m.discount), pricing.ParseAmount(m.payment))
	receipt := Receipt{
		Lines:   m.cart.clone().Lines,
		Totals:  totals,
		Message: fmt.Sprintf("%s\nTotal: %s", receiptHeader, m.format.Format(totals.FinalTotal)),
		At:      m.now(),
	}
	if m.prompter != nil {
		m.prompter.Alert(receipt.Message)
	}
	m.reset()
	m.open = false
	m.RecomputeSummary()
	m.logger.Info().Str("final_total", totals.FinalTotal.String()).Int("items", totals.TotalItems).Msg("checkout completed")
	m.publish(ctx, SignalPurchased, map[string]any{
		"finalTotal": totals.FinalTotal.String(),
		"items":      totals.TotalItems,
	})
	return receipt, true
}

// ViewOrderDetails presents the itemised order. It reports false when the
// cart was empty.
func (m *Manager) ViewOrderDetails(ctx context.Context) (string, bool) {
	if m.cart.IsEmpty() {
		m.publish(ctx, SignalNoItems, nil)
		return "", false
	}
	details := m.orderDetails()
	if m.prompter != nil {
		m.prompter.Alert(details)
	}
	m.publish(ctx, SignalOrderViewed, nil)
	return details, true
}

// ToggleView opens or closes the cart view.
func (m *Manager) ToggleView() {
	m.open = !m.open
	m.RecomputeSummary()
}

// CloseView hides the cart view.
func (m *Manager) CloseView() {
	m.open = false
	m.RecomputeSummary()
}

// RecomputeSummary derives fresh totals and hands the view model to the renderer.
func (m *Manager) RecomputeSummary() {
	if m.renderer == nil {
		return
	}
	m.renderer.Render(m.Snapshot())
}

func (m *Manager) orderDetails() string {
	var b strings.Builder
	b.WriteString("Current Order:\n\n")
	for _, l := range m.cart.Lines {
		fmt.Fprintf(&b, "%s\nQuantity: %d\nPrice: %s\nSubtotal: %s\n\n",
			l.Name, l.Quantity, m.format.Format(l.Price), m.format.Format(l.Subtotal()))
	}
	totals := m.cart.Totals(pricing.ParseAmount(m.discount), pricing.ParseAmount(m.payment))
	b.WriteString("\nOrder Summary:\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", m.format.Format(totals.Subtotal))
	fmt.Fprintf(&b, "Discount: %s\n", m.format.Format(totals.Discount))
	fmt.Fprintf(&b, "Final Total: %s", m.format.Format(totals.FinalTotal))
	return b.String()
}

func (m *Manager) reset() {
	m.cart = Cart{}
	m.discount = ""
	m.payment = ""
}

func (m *Manager) publish(ctx context.Context, sig Signal, payload any) {
	if sig.IsZero() || m.events == nil {
		return
	}
	if _, err := m.events.Emit(ctx, sig.Topic, sig.Message, payload); err != nil {
		m.logger.Warn().Err(err).Str("topic", sig.Topic).Msg("publish cart signal")
	}
}
