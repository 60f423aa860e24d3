package cart

import "github.com/noah-isme/toko-storefront/internal/events"

// Signal is the outcome of a cart operation: a bus topic plus the text shown
// to the visitor. An empty Message raises no banner.
type Signal struct {
	Topic   string
	Message string
}

// IsZero reports whether no signal was raised.
func (s Signal) IsZero() bool { return s.Topic == "" }

var (
	SignalNone            = Signal{}
	SignalItemAdded       = Signal{Topic: events.TopicItemAdded, Message: "Item added to cart"}
	SignalQuantityUpdated = Signal{Topic: events.TopicQuantityUpdated, Message: "Item quantity updated in cart"}
	SignalQuantityChanged = Signal{Topic: events.TopicQuantityChanged}
	SignalItemRemoved     = Signal{Topic: events.TopicItemRemoved, Message: "Item removed from cart"}
	SignalCleared         = Signal{Topic: events.TopicCartCleared, Message: "Order cleared successfully"}
	SignalAlreadyEmpty    = Signal{Topic: events.TopicCartAlreadyEmpty, Message: "Cart is already empty"}
	SignalCartEmpty       = Signal{Topic: events.TopicCartEmpty, Message: "Your cart is empty"}
	SignalPurchased       = Signal{Topic: events.TopicCheckoutCompleted, Message: "Purchase completed successfully!"}
	SignalOrderViewed     = Signal{Topic: events.TopicOrderViewed}
	SignalNoItems         = Signal{Topic: events.TopicNoItems, Message: "No items in cart"}
)
