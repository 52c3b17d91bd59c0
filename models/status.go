package models

// OrderItemStatus is the preparation state of a single order line.
type OrderItemStatus string

const (
	OrderItemPendingKDS            OrderItemStatus = "PENDING_KDS"
	OrderItemPreparing             OrderItemStatus = "PREPARING"
	OrderItemReady                 OrderItemStatus = "READY"
	OrderItemServed                OrderItemStatus = "SERVED"
	OrderItemCancelled             OrderItemStatus = "CANCELLED"
	OrderItemCancellationRequested OrderItemStatus = "CANCELLATION_REQUESTED"
)

var orderItemStatuses = map[OrderItemStatus]struct{}{
	OrderItemPendingKDS:            {},
	OrderItemPreparing:             {},
	OrderItemReady:                 {},
	OrderItemServed:                {},
	OrderItemCancelled:             {},
	OrderItemCancellationRequested: {},
}

// ParseOrderItemStatus reports whether s names a known item status.
func ParseOrderItemStatus(s string) (OrderItemStatus, bool) {
	status := OrderItemStatus(s)
	_, ok := orderItemStatuses[status]
	return status, ok
}

// DefaultStationStatuses is what a station terminal shows when it asks for no filter.
func DefaultStationStatuses() []OrderItemStatus {
	return []OrderItemStatus{OrderItemPendingKDS, OrderItemPreparing}
}

// OrderStatus is derived from the statuses of an order's items.
type OrderStatus string

const (
	OrderStatusReceived       OrderStatus = "RECEIVED"
	OrderStatusInProgress     OrderStatus = "IN_PROGRESS"
	OrderStatusPartiallyReady OrderStatus = "PARTIALLY_READY"
	OrderStatusAllItemsReady  OrderStatus = "ALL_ITEMS_READY"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// SelectionType controls how many options of a modifier group a customer may pick.
type SelectionType string

const (
	SelectionRadio    SelectionType = "RADIO"
	SelectionCheckbox SelectionType = "CHECKBOX"
)

const (
	TableStatusAvailable = "AVAILABLE"
	TableStatusOccupied  = "OCCUPIED"
)
