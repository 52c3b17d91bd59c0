package services

import (
	"time"

	"github.com/yeremiapane/camarero-fulfillment/models"
)

var allowedTransitions = map[models.OrderItemStatus][]models.OrderItemStatus{
	models.OrderItemPendingKDS: {
		models.OrderItemPreparing,
		models.OrderItemCancelled,
		models.OrderItemCancellationRequested,
	},
	models.OrderItemPreparing: {
		models.OrderItemReady,
		models.OrderItemCancelled,
		models.OrderItemCancellationRequested,
	},
	models.OrderItemReady: {
		models.OrderItemServed,
		models.OrderItemPreparing,
	},
	models.OrderItemCancellationRequested: {
		models.OrderItemCancelled,
		models.OrderItemPreparing,
		models.OrderItemPendingKDS,
	},
	models.OrderItemServed:    {},
	models.OrderItemCancelled: {},
}

// StatusMachine owns the legal moves of a single order item.
type StatusMachine struct {
	Now func() time.Time
}

func (m StatusMachine) CanTransition(from, to models.OrderItemStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves item to next in place. Asking for the current status
// changes nothing and reports changed == false.
func (m StatusMachine) ApplyTransition(item *models.OrderItem, next models.OrderItemStatus) (bool, error) {
	if item.Status == next {
		return false, nil
	}
	if !m.CanTransition(item.Status, next) {
		return false, Conflict("cannot change order item from %s to %s", item.Status, next)
	}

	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	switch next {
	case models.OrderItemPreparing:
		if item.PreparedAt == nil {
			item.PreparedAt = &now
		}
	case models.OrderItemServed:
		if item.ServedAt == nil {
			item.ServedAt = &now
		}
	}
	item.Status = next
	return true, nil
}
