package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/camarero-fulfillment/models"
)

func TestStationQueueFifoAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.submit(t,
		OrderLine{MenuItemID: burgerID, Quantity: 1, SelectedModifierOptionIDs: []string{baconID, cheeseID}},
		OrderLine{MenuItemID: mojitoID, Quantity: 1},
		OrderLine{MenuItemID: steakID, Quantity: 1, SelectedModifierOptionIDs: []string{rareID}},
	)
	second := f.submit(t, OrderLine{MenuItemID: burgerID, Quantity: 2})

	queue, err := f.kds.StationQueue(ctx, bizID, "KITCHEN", nil)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, first.ID, queue[0].OrderID)
	assert.Equal(t, 1, queue[0].LineNumber)
	assert.Equal(t, []string{"Bacon", "Cheese"}, queue[0].SelectedModifiers)
	assert.Equal(t, first.OrderNumber, queue[0].OrderNumber)
	assert.Equal(t, 3, queue[1].LineNumber)
	assert.Equal(t, second.ID, queue[2].OrderID)

	f.setStatus(t, first.Items[0].ID, models.OrderItemPreparing)
	f.setStatus(t, first.Items[0].ID, models.OrderItemReady)

	queue, err = f.kds.StationQueue(ctx, bizID, "KITCHEN", nil)
	require.NoError(t, err)
	assert.Len(t, queue, 2, "ready items leave the default view")

	queue, err = f.kds.StationQueue(ctx, bizID, "KITCHEN", []models.OrderItemStatus{models.OrderItemReady})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, first.Items[0].ID, queue[0].ID)

	bar, err := f.kds.StationQueue(ctx, bizID, "BAR", nil)
	require.NoError(t, err)
	require.Len(t, bar, 1)
	assert.Equal(t, "Mojito", bar[0].ItemNameSnapshot)

	other, err := f.kds.StationQueue(ctx, otherBizID, "KITCHEN", nil)
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.kds.StationQueue(ctx, bizID, "", nil)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestOverviewAndReadyForPickup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.submit(t, OrderLine{MenuItemID: burgerID, Quantity: 1}, OrderLine{MenuItemID: mojitoID, Quantity: 1})

	overview, err := f.kds.Overview(ctx, bizID, []string{"KITCHEN", "BAR", "GRILL"}, nil)
	require.NoError(t, err)
	assert.Len(t, overview["KITCHEN"], 1)
	assert.Len(t, overview["BAR"], 1)
	assert.Empty(t, overview["GRILL"])

	for _, item := range order.Items {
		f.setStatus(t, item.ID, models.OrderItemPreparing)
		f.setStatus(t, item.ID, models.OrderItemReady)
	}
	ready, err := f.kds.ReadyForPickup(ctx, bizID)
	require.NoError(t, err)
	assert.Len(t, ready, 2)

	_, err = f.kds.Overview(ctx, bizID, nil, nil)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

type mapCache struct {
	mu          sync.Mutex
	entries     map[string][]models.StationQueueItem
	invalidated []string
}

func (m *mapCache) key(f models.StationQueueFilter) string {
	return f.BusinessID + "|" + f.Destination
}

func (m *mapCache) Get(_ context.Context, f models.StationQueueFilter) ([]models.StationQueueItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.entries[m.key(f)]
	return items, ok, nil
}

func (m *mapCache) Set(_ context.Context, f models.StationQueueFilter, items []models.StationQueueItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.key(f)] = items
	return nil
}

func (m *mapCache) Invalidate(_ context.Context, businessID string, destinations ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, businessID+"|")
	for _, d := range destinations {
		delete(m.entries, businessID+"|"+d)
		m.invalidated = append(m.invalidated, d)
	}
	return nil
}

func TestStationQueueUsesCache(t *testing.T) {
	f := newFixture(t)
	cache := &mapCache{entries: map[string][]models.StationQueueItem{}}
	f.kds.Cache = cache
	f.fulfillment.Cache = cache
	f.orders.Cache = cache
	ctx := context.Background()

	order := f.submit(t, OrderLine{MenuItemID: burgerID, Quantity: 1})
	queue, err := f.kds.StationQueue(ctx, bizID, "KITCHEN", nil)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	cache.entries[bizID+"|KITCHEN"] = nil
	cached, err := f.kds.StationQueue(ctx, bizID, "KITCHEN", nil)
	require.NoError(t, err)
	assert.Empty(t, cached, "second read is served from cache")

	f.setStatus(t, order.Items[0].ID, models.OrderItemPreparing)
	assert.Contains(t, cache.invalidated, "KITCHEN")
	fresh, err := f.kds.StationQueue(ctx, bizID, "KITCHEN", nil)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, models.OrderItemPreparing, fresh[0].Status)
}
