package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// Action names a user intent coming from an input source.
type Action string

const (
	ActionAdd       Action = "add"
	ActionRemove    Action = "remove"
	ActionIncrement Action = "increment"
	ActionDecrement Action = "decrement"
	ActionAdjust    Action = "adjust"
	ActionDiscount  Action = "discount"
	ActionPayment   Action = "payment"
	ActionClear     Action = "clear"
	ActionCheckout  Action = "checkout"
	ActionViewOrder Action = "view-order"
	ActionToggle    Action = "toggle"
)

// ErrUnknownAction is returned for actions missing from the dispatch table.
var ErrUnknownAction = errors.New("unknown cart action")

// Command is the input-agnostic form of a user event.
type Command struct {
	Action Action
	ID     string
	Name   string
	Price  string
	Image  string
	Value  string
	Delta  int
}

// Result is what an action produced, for the caller to present.
type Result struct {
	Signal  Signal
	Receipt *Receipt
	Details string
}

// HandlerFunc executes a Command against a Manager.
type HandlerFunc func(ctx context.Context, m *Manager, cmd Command) Result

// Dispatcher maps actions to Manager operations.
type Dispatcher struct {
	handlers map[Action]HandlerFunc
}

// NewDispatcher returns a dispatcher loaded with the default action table.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: map[Action]HandlerFunc{}}
	d.Register(ActionAdd, func(ctx context.Context, m *Manager, c Command) Result {
		return Result{Signal: m.AddItem(ctx, c.ID, c.Name, pricing.ParseAmount(c.Price), c.Image)}
	})
	d.Register(ActionRemove, func(ctx context.Context, m *Manager, c Command) Result {
		return Result{Signal: m.RemoveItem(ctx, c.ID)}
	})
	d.Register(ActionIncrement, func(ctx context.Context, m *Manager, c Command) Result {
		return Result{Signal: m.UpdateQuantity(ctx, c.ID, magnitude(c.Delta))}
	})
	d.Register(ActionDecrement, func(ctx context.Context, m *Manager, c Command) Result {
		return Result{Signal: m.UpdateQuantity(ctx, c.ID, -magnitude(c.Delta))}
	})
	d.Register(ActionAdjust, func(ctx context.Context, m *Manager, c Command) Result {
		return Result{Signal: m.UpdateQuantity(ctx, c.ID, c.Delta)}
	})
	d.Register(ActionDiscount, func(_ context.Context, m *Manager, c Command) Result {
		m.SetDiscount(c.Value)
		return Result{}
	})
	d.Register(ActionPayment, func(_ context.Context, m *Manager, c Command) Result {
		m.SetPayment(c.Value)
		return Result{}
	})
	d.Register(ActionClear, func(ctx context.Context, m *Manager, _ Command) Result {
		return Result{Signal: m.Clear(ctx)}
	})
	d.Register(ActionCheckout, func(ctx context.Context, m *Manager, _ Command) Result {
		receipt, ok := m.Checkout(ctx)
		if !ok {
			return Result{Signal: SignalCartEmpty}
		}
		return Result{Signal: SignalPurchased, Receipt: &receipt}
	})
	d.Register(ActionViewOrder, func(ctx context.Context, m *Manager, _ Command) Result {
		details, ok := m.ViewOrderDetails(ctx)
		if !ok {
			return Result{Signal: SignalNoItems}
		}
		return Result{Signal: SignalOrderViewed, Details: details}
	})
	d.Register(ActionToggle, func(_ context.Context, m *Manager, _ Command) Result {
		m.ToggleView()
		return Result{}
	})
	return d
}

// Register installs or replaces the handler for an action.
func (d *Dispatcher) Register(action Action, fn HandlerFunc) {
	if fn == nil {
		delete(d.handlers, action)
		return
	}
	d.handlers[action] = fn
}

// Dispatch runs cmd against m.
func (d *Dispatcher) Dispatch(ctx context.Context, m *Manager, cmd Command) (Result, error) {
	fn, ok := d.handlers[cmd.Action]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	return fn(ctx, m, cmd), nil
}

// Actions lists the registered actions in lexical order.
func (d *Dispatcher) Actions() []Action {
	out := make([]Action, 0, len(d.handlers))
	for a := range d.handlers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func magnitude(delta int) int {
	if delta == 0 {
		return 1
	}
	if delta < 0 {
		return -delta
	}
	return delta
}
