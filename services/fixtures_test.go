package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/models"
)

const (
	bizID      = "biz-1"
	otherBizID = "biz-2"

	burgerID  = "item-burger"
	steakID   = "item-steak"
	mojitoID  = "item-mojito"
	soldOutID = "item-soldout"
	foreignID = "item-foreign"

	cheeseID = "opt-cheese"
	baconID  = "opt-bacon"
	eggID    = "opt-egg"
	rareID   = "opt-rare"
	mediumID = "opt-medium"
)

func strPtr(s string) *string { return &s }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixtureStore(t *testing.T) *database.MemoryStore {
	t.Helper()
	store := database.NewMemoryStore()

	store.AddBusiness(models.Business{ID: bizID, Slug: "la-tasca", Name: "La Tasca", IsActive: true, IsOrderingActive: true})
	store.AddBusiness(models.Business{ID: otherBizID, Slug: "el-otro", Name: "El Otro", IsActive: true, IsOrderingActive: true})
	store.AddTable(models.Table{ID: "table-1", BusinessID: bizID, Identifier: "T1", Status: models.TableStatusAvailable})

	kitchen, bar := strPtr("KITCHEN"), strPtr("BAR")
	store.AddMenuItem(models.MenuItem{
		ID: burgerID, BusinessID: bizID, Name: "Burger", Description: strPtr("Beef burger"),
		Price: money("10.00"), IsAvailable: true, KdsDestination: kitchen, Position: 1,
		ModifierGroups: []models.ModifierGroup{{
			ID: "grp-extras", MenuItemID: burgerID, Name: "Extras", SelectionType: models.SelectionCheckbox,
			MinSelections: 0, MaxSelections: 2, Position: 1,
			Options: []models.ModifierOption{
				{ID: cheeseID, GroupID: "grp-extras", Name: "Cheese", PriceAdjustment: money("1.20"), IsAvailable: true, Position: 1},
				{ID: baconID, GroupID: "grp-extras", Name: "Bacon", PriceAdjustment: money("1.50"), IsAvailable: true, Position: 2},
				{ID: eggID, GroupID: "grp-extras", Name: "Egg", PriceAdjustment: money("0.80"), IsAvailable: false, Position: 3},
			},
		}},
	})
	store.AddMenuItem(models.MenuItem{
		ID: steakID, BusinessID: bizID, Name: "Steak", Price: money("20.00"), IsAvailable: true,
		KdsDestination: kitchen, Position: 2,
		ModifierGroups: []models.ModifierGroup{{
			ID: "grp-doneness", MenuItemID: steakID, Name: "Doneness", SelectionType: models.SelectionRadio,
			IsRequired: true, MinSelections: 1, MaxSelections: 2, Position: 1,
			Options: []models.ModifierOption{
				{ID: rareID, GroupID: "grp-doneness", Name: "Rare", PriceAdjustment: decimal.Zero, IsAvailable: true, Position: 1},
				{ID: mediumID, GroupID: "grp-doneness", Name: "Medium", PriceAdjustment: decimal.Zero, IsAvailable: true, Position: 2},
			},
		}},
	})
	store.AddMenuItem(models.MenuItem{ID: mojitoID, BusinessID: bizID, Name: "Mojito", Price: money("7.50"), IsAvailable: true, KdsDestination: bar, Position: 3})
	store.AddMenuItem(models.MenuItem{ID: soldOutID, BusinessID: bizID, Name: "Paella", Price: money("15.00"), IsAvailable: false, KdsDestination: kitchen, Position: 4})
	store.AddMenuItem(models.MenuItem{ID: foreignID, BusinessID: otherBizID, Name: "Tacos", Price: money("9.00"), IsAvailable: true, KdsDestination: kitchen, Position: 1})
	return store
}

// recordingSink keeps every published event.
type recordingSink struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingSink) Publish(_ context.Context, e models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type fixture struct {
	store       *database.MemoryStore
	sink        *recordingSink
	orders      *OrderService
	fulfillment *FulfillmentService
	kds         *KdsService
}

func newFixture(t *testing.T) *fixture {
	store := newFixtureStore(t)
	sink := &recordingSink{}
	f := &fixture{
		store:       store,
		sink:        sink,
		orders:      NewOrderService(store, sink, nil),
		fulfillment: NewFulfillmentService(store, sink, nil),
		kds:         NewKdsService(store, nil),
	}
	clock := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	f.orders.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return f
}

func (f *fixture) submit(t *testing.T, lines ...OrderLine) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), bizID, SubmitOrderInput{Items: lines})
	require.NoError(t, err)
	return order
}

func (f *fixture) setStatus(t *testing.T, itemID string, status models.OrderItemStatus) *StatusUpdateResult {
	t.Helper()
	res, err := f.fulfillment.UpdateItemStatus(context.Background(), bizID, itemID, string(status))
	require.NoError(t, err)
	return res
}
