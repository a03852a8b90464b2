package cart

import "context"

// Routing keys published after successful mutations.
const (
	RKItemAdded   = "cart.item.added"
	RKItemUpdated = "cart.item.updated"
	RKItemRemoved = "cart.item.removed"
)

type Events interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type ItemEvent struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Delta     int    `json:"delta,omitempty"`
	Version   int64  `json:"version"`
}
