package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/models"
)

// tracingStore records the Tx calls of every transaction it runs.
type tracingStore struct {
	database.Store
	mu    sync.Mutex
	calls [][]string
}

func (s *tracingStore) WithinTx(ctx context.Context, fn func(tx database.Tx) error) error {
	return s.Store.WithinTx(ctx, func(tx database.Tx) error {
		traced := &tracingTx{Tx: tx}
		err := fn(traced)
		s.mu.Lock()
		s.calls = append(s.calls, traced.calls)
		s.mu.Unlock()
		return err
	})
}

func (s *tracingStore) last() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

type tracingTx struct {
	database.Tx
	calls []string
}

func (t *tracingTx) LockOrder(businessID, orderID string) (*models.Order, error) {
	t.calls = append(t.calls, "LockOrder")
	return t.Tx.LockOrder(businessID, orderID)
}

func (t *tracingTx) LockOrderItem(orderID, itemID string) (*models.OrderItem, error) {
	t.calls = append(t.calls, "LockOrderItem")
	return t.Tx.LockOrderItem(orderID, itemID)
}

func (t *tracingTx) ListItemStatuses(orderID string) ([]models.OrderItemStatus, error) {
	t.calls = append(t.calls, "ListItemStatuses")
	return t.Tx.ListItemStatuses(orderID)
}

func (t *tracingTx) UpdateOrderItemStatus(item *models.OrderItem) error {
	t.calls = append(t.calls, "UpdateOrderItemStatus")
	return t.Tx.UpdateOrderItemStatus(item)
}

func (t *tracingTx) CreateOrderItems(items []models.OrderItem) error {
	t.calls = append(t.calls, "CreateOrderItems")
	return t.Tx.CreateOrderItems(items)
}

// assertOrderLockedFirst checks that no item row is locked or written before
// the order row.
func assertOrderLockedFirst(t *testing.T, calls []string) {
	t.Helper()
	require.NotEmpty(t, calls)
	assert.Equal(t, "LockOrder", calls[0], "calls: %v", calls)
}

func TestUpdateItemStatusLocksOrderBeforeItems(t *testing.T) {
	f := newFixture(t)
	order := f.submit(t,
		OrderLine{MenuItemID: burgerID, Quantity: 1},
		OrderLine{MenuItemID: mojitoID, Quantity: 1},
	)

	store := &tracingStore{Store: f.store}
	fulfillment := NewFulfillmentService(store, nil, nil)
	_, err := fulfillment.UpdateItemStatus(context.Background(), bizID, order.Items[1].ID, string(models.OrderItemPreparing))
	require.NoError(t, err)

	calls := store.last()
	assertOrderLockedFirst(t, calls)
	assert.Equal(t, []string{"LockOrder", "LockOrderItem", "UpdateOrderItemStatus", "ListItemStatuses"}, calls)
}

func TestAddItemsLocksOrderBeforeItems(t *testing.T) {
	f := newFixture(t)
	order := f.submit(t, OrderLine{MenuItemID: burgerID, Quantity: 1})

	store := &tracingStore{Store: f.store}
	orders := NewOrderService(store, nil, nil)
	_, err := orders.AddItems(context.Background(), bizID, order.ID, AddItemsInput{
		Items: []OrderLine{{MenuItemID: mojitoID, Quantity: 1}},
	})
	require.NoError(t, err)

	assertOrderLockedFirst(t, store.last())
}

func TestConcurrentSiblingUpdatesAllSucceed(t *testing.T) {
	f := newFixture(t)
	order := f.submit(t,
		OrderLine{MenuItemID: burgerID, Quantity: 1},
		OrderLine{MenuItemID: steakID, Quantity: 1, SelectedModifierOptionIDs: []string{rareID}},
		OrderLine{MenuItemID: mojitoID, Quantity: 1},
		OrderLine{MenuItemID: burgerID, Quantity: 2},
	)

	var wg sync.WaitGroup
	errs := make(chan error, len(order.Items)*2)
	for _, item := range order.Items {
		wg.Add(1)
		go func(itemID string) {
			defer wg.Done()
			for _, status := range []models.OrderItemStatus{models.OrderItemPreparing, models.OrderItemReady} {
				if _, err := f.fulfillment.UpdateItemStatus(context.Background(), bizID, itemID, string(status)); err != nil {
					errs <- err
				}
			}
		}(item.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	got, err := f.orders.GetOrder(context.Background(), bizID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAllItemsReady, got.Status)
	for _, item := range got.Items {
		assert.Equal(t, models.OrderItemReady, item.Status)
	}
}
