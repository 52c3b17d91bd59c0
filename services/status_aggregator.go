package services

import "github.com/yeremiapane/camarero-fulfillment/models"

type aggregationRule struct {
	name   string
	match  func(statusCounts) bool
	result models.OrderStatus
}

type statusCounts struct {
	total int
	by    map[models.OrderItemStatus]int
}

func countStatuses(statuses []models.OrderItemStatus) statusCounts {
	c := statusCounts{total: len(statuses), by: make(map[models.OrderItemStatus]int)}
	for _, s := range statuses {
		c.by[s]++
	}
	return c
}

func (c statusCounts) all(states ...models.OrderItemStatus) bool {
	n := 0
	for _, s := range states {
		n += c.by[s]
	}
	return c.total > 0 && n == c.total
}

func (c statusCounts) any(states ...models.OrderItemStatus) bool {
	for _, s := range states {
		if c.by[s] > 0 {
			return true
		}
	}
	return false
}

// Rules are evaluated in order and the first match wins.
//
// Open question kept as is: a mix such as {READY, CANCELLATION_REQUESTED}
// matches no rule before IN_PROGRESS, and {SERVED, CANCELLED} with no READY
// item leaves the order status unchanged.
var aggregationRules = []aggregationRule{
	{
		name:   "all served",
		match:  func(c statusCounts) bool { return c.all(models.OrderItemServed) },
		result: models.OrderStatusCompleted,
	},
	{
		name:   "all cancelled",
		match:  func(c statusCounts) bool { return c.all(models.OrderItemCancelled) },
		result: models.OrderStatusCancelled,
	},
	{
		name: "all ready or finished",
		match: func(c statusCounts) bool {
			return c.all(models.OrderItemReady, models.OrderItemServed, models.OrderItemCancelled) &&
				c.any(models.OrderItemReady)
		},
		result: models.OrderStatusAllItemsReady,
	},
	{
		name: "some ready",
		match: func(c statusCounts) bool {
			return c.any(models.OrderItemReady) &&
				c.any(models.OrderItemPendingKDS, models.OrderItemPreparing)
		},
		result: models.OrderStatusPartiallyReady,
	},
	{
		name: "in kitchen",
		match: func(c statusCounts) bool {
			return c.any(models.OrderItemPreparing, models.OrderItemPendingKDS, models.OrderItemReady)
		},
		result: models.OrderStatusInProgress,
	},
}

// StatusAggregator derives the order status from its items.
type StatusAggregator struct{}

// Recompute returns the derived status and whether it differs from current.
// When no rule matches, current is returned unchanged.
func (StatusAggregator) Recompute(current models.OrderStatus, statuses []models.OrderItemStatus) (models.OrderStatus, bool) {
	counts := countStatuses(statuses)
	for _, rule := range aggregationRules {
		if rule.match(counts) {
			return rule.result, rule.result != current
		}
	}
	return current, false
}
