package models

import "time"

// Event is published after a fulfillment mutation commits.
type Event interface {
	Type() string
}

type SubmittedItem struct {
	OrderItemID    string  `json:"order_item_id"`
	KdsDestination *string `json:"kds_destination,omitempty"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
}

type OrderItemsSubmitted struct {
	BusinessID  string          `json:"business_id"`
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Items       []SubmittedItem `json:"items"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (e OrderItemsSubmitted) Type() string { return "order_items_submitted" }

// Destinations lists the distinct stations the submitted items are routed to.
func (e OrderItemsSubmitted) Destinations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range e.Items {
		if item.KdsDestination == nil || seen[*item.KdsDestination] {
			continue
		}
		seen[*item.KdsDestination] = true
		out = append(out, *item.KdsDestination)
	}
	return out
}

type ItemStatusChanged struct {
	BusinessID     string          `json:"business_id"`
	OrderID        string          `json:"order_id"`
	OrderItemID    string          `json:"order_item_id"`
	KdsDestination *string         `json:"kds_destination,omitempty"`
	From           OrderItemStatus `json:"from"`
	To             OrderItemStatus `json:"to"`
	OrderStatus    OrderStatus     `json:"order_status"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func (e ItemStatusChanged) Type() string { return "order_item_status_changed" }
