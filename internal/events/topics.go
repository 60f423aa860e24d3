package events

// Topic constants for signals raised by the cart and the review list.
const (
	TopicItemAdded         = "cart.item_added"
	TopicQuantityUpdated   = "cart.quantity_updated"
	TopicQuantityChanged   = "cart.quantity_changed"
	TopicItemRemoved       = "cart.item_removed"
	TopicCartCleared       = "cart.cleared"
	TopicCartAlreadyEmpty  = "cart.already_empty"
	TopicCartEmpty         = "cart.empty"
	TopicCheckoutCompleted = "cart.checkout_completed"
	TopicOrderViewed       = "cart.order_viewed"
	TopicNoItems           = "cart.no_items"
	TopicReviewSubmitted   = "review.submitted"
)

// DefaultTopics returns every topic that surfaces a banner message.
func DefaultTopics() []string {
	return []string{
		TopicItemAdded,
		TopicQuantityUpdated,
		TopicItemRemoved,
		TopicCartCleared,
		TopicCartAlreadyEmpty,
		TopicCartEmpty,
		TopicCheckoutCompleted,
		TopicNoItems,
		TopicReviewSubmitted,
	}
}
