package database

import (
	"context"
	"errors"

	"github.com/yeremiapane/camarero-fulfillment/models"
)

// ErrNotFound is returned by every lookup that matches no row.
var ErrNotFound = errors.New("record not found")

// Store is the transactional persistence handle injected into the services.
type Store interface {
	// WithinTx runs fn in one transaction. A non-nil error from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	FindOrder(ctx context.Context, businessID, orderID string) (*models.Order, error)
	FindStationQueue(ctx context.Context, filter models.StationQueueFilter) ([]models.StationQueueItem, error)
}

// Tx is the set of reads and writes available inside WithinTx.
type Tx interface {
	FindBusiness(id string) (*models.Business, error)
	FindTable(businessID, identifier string) (*models.Table, error)
	UpdateTableStatus(tableID, status string) error
	CountOrders(businessID string) (int64, error)

	CreateOrder(order *models.Order) error
	// LockOrder reads the order row, taking a row lock where the database supports it.
	LockOrder(businessID, orderID string) (*models.Order, error)
	UpdateOrder(order *models.Order) error

	// FetchMenuItemWithModifiers loads groups and available options ordered by position.
	FetchMenuItemWithModifiers(menuItemID string) (*models.MenuItem, error)

	CreateOrderItems(items []models.OrderItem) error
	// FindOrderItem reads the item without locking and scopes it to the business
	// through its order. Callers lock the order before LockOrderItem, so every
	// writer takes the order row first and item rows second.
	FindOrderItem(itemID, businessID string) (*models.OrderItem, error)
	LockOrderItem(orderID, itemID string) (*models.OrderItem, error)
	UpdateOrderItemStatus(item *models.OrderItem) error
	// ListItemStatuses is a locking read. Call it only while holding the order lock.
	ListItemStatuses(orderID string) ([]models.OrderItemStatus, error)
}

// QueueCache holds short-lived station queue snapshots.
type QueueCache interface {
	Get(ctx context.Context, filter models.StationQueueFilter) ([]models.StationQueueItem, bool, error)
	Set(ctx context.Context, filter models.StationQueueFilter, items []models.StationQueueItem) error
	Invalidate(ctx context.Context, businessID string, destinations ...string) error
}
