package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/camarero-fulfillment/models"
)

func TestCreateOrderSnapshotsAndPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, bizID, SubmitOrderInput{
		TableIdentifier: strPtr("T1"),
		Notes:           strPtr("birthday"),
		Items: []OrderLine{
			{MenuItemID: burgerID, Quantity: 1, SelectedModifierOptionIDs: []string{cheeseID, baconID}},
			{MenuItemID: mojitoID, Quantity: 2, Notes: strPtr("no ice")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusReceived, order.Status)
	assert.Equal(t, "P-20260314-00001", order.OrderNumber)
	assert.Equal(t, "27.70", order.TotalAmount.StringFixed(2))
	require.NotNil(t, order.Table)
	assert.Equal(t, models.TableStatusOccupied, order.Table.Status)
	table, _ := f.store.Table("table-1")
	assert.Equal(t, models.TableStatusOccupied, table.Status)

	require.Len(t, order.Items, 2)
	burger := order.Items[0]
	assert.Equal(t, 1, burger.LineNumber)
	assert.Equal(t, "Burger", burger.ItemNameSnapshot)
	assert.Equal(t, "Beef burger", *burger.ItemDescriptionSnapshot)
	assert.Equal(t, "KITCHEN", *burger.KdsDestination)
	assert.Equal(t, models.OrderItemPendingKDS, burger.Status)
	assert.Equal(t, "10.00", burger.BasePriceAtPurchase.StringFixed(2))
	assert.Equal(t, "12.70", burger.PriceAtPurchase.StringFixed(2))
	assert.Equal(t, "12.70", burger.TotalItemPrice.StringFixed(2))
	require.Len(t, burger.SelectedModifiers, 2)
	assert.Equal(t, "Cheese", burger.SelectedModifiers[0].OptionNameSnapshot)
	assert.Equal(t, "Bacon", burger.SelectedModifiers[1].OptionNameSnapshot)
	assert.True(t, burger.PriceAtPurchase.Sub(burger.BasePriceAtPurchase).Equal(burger.ModifiersTotal()))

	mojito := order.Items[1]
	assert.Equal(t, 2, mojito.LineNumber)
	assert.Equal(t, "15.00", mojito.TotalItemPrice.StringFixed(2))
	assert.Equal(t, "no ice", *mojito.Notes)

	require.Len(t, f.sink.events, 1)
	submitted, ok := f.sink.events[0].(models.OrderItemsSubmitted)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"KITCHEN", "BAR"}, submitted.Destinations())
}

func TestCreateOrderIsAllOrNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.CreateOrder(context.Background(), bizID, SubmitOrderInput{
		Items: []OrderLine{
			{MenuItemID: burgerID, Quantity: 1},
			{MenuItemID: steakID, Quantity: 1, SelectedModifierOptionIDs: []string{rareID, mediumID}},
			{MenuItemID: mojitoID, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))
	assert.Equal(t, 0, f.store.OrderItemCount())
	assert.Equal(t, 0, f.store.OrderCount())
	assert.Empty(t, f.sink.events)
}

func TestCreateOrderRejections(t *testing.T) {
	tests := []struct {
		name     string
		business string
		input    SubmitOrderInput
		kind     ErrorKind
	}{
		{"unavailable menu item", bizID, SubmitOrderInput{Items: []OrderLine{{MenuItemID: soldOutID, Quantity: 1}}}, KindBadRequest},
		{"missing menu item", bizID, SubmitOrderInput{Items: []OrderLine{{MenuItemID: "nope", Quantity: 1}}}, KindNotFound},
		{"zero quantity", bizID, SubmitOrderInput{Items: []OrderLine{{MenuItemID: burgerID, Quantity: 0}}}, KindBadRequest},
		{"no items", bizID, SubmitOrderInput{}, KindBadRequest},
		{"unknown table", bizID, SubmitOrderInput{TableIdentifier: strPtr("T99"), Items: []OrderLine{{MenuItemID: burgerID, Quantity: 1}}}, KindBadRequest},
		{"unknown business", "biz-missing", SubmitOrderInput{Items: []OrderLine{{MenuItemID: burgerID, Quantity: 1}}}, KindNotFound},
		{"required modifier missing", bizID, SubmitOrderInput{Items: []OrderLine{{MenuItemID: steakID, Quantity: 1}}}, KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.orders.CreateOrder(context.Background(), tt.business, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, 0, f.store.OrderItemCount())
		})
	}
}

func TestCreateOrderClosedBusiness(t *testing.T) {
	f := newFixture(t)
	f.store.AddBusiness(models.Business{ID: "biz-closed", Name: "Closed", IsActive: true, IsOrderingActive: false})

	_, err := f.orders.CreateOrder(context.Background(), "biz-closed", SubmitOrderInput{Items: []OrderLine{{MenuItemID: burgerID, Quantity: 1}}})
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestOrderNumbersIncrement(t *testing.T) {
	f := newFixture(t)
	first := f.submit(t, OrderLine{MenuItemID: mojitoID, Quantity: 1})
	second := f.submit(t, OrderLine{MenuItemID: mojitoID, Quantity: 1})

	assert.Equal(t, "P-20260314-00001", first.OrderNumber)
	assert.Equal(t, "P-20260314-00002", second.OrderNumber)
}

func TestAddItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.submit(t, OrderLine{MenuItemID: mojitoID, Quantity: 1})

	f.setStatus(t, order.Items[0].ID, models.OrderItemPreparing)
	f.setStatus(t, order.Items[0].ID, models.OrderItemReady)
	f.setStatus(t, order.Items[0].ID, models.OrderItemServed)
	current, err := f.orders.GetOrder(ctx, bizID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, current.Status)

	updated, err := f.orders.AddItems(ctx, bizID, order.ID, AddItemsInput{Items: []OrderLine{
		{MenuItemID: burgerID, Quantity: 2, SelectedModifierOptionIDs: []string{cheeseID}},
	}})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, updated.Status)
	assert.Equal(t, "29.90", updated.TotalAmount.StringFixed(2))
	require.Len(t, updated.Items, 2)
	assert.Equal(t, 2, updated.Items[1].LineNumber)
	assert.Equal(t, "22.40", updated.Items[1].TotalItemPrice.StringFixed(2))
}

func TestAddItemsReopensOnlyFinishedOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	more := AddItemsInput{Items: []OrderLine{{MenuItemID: mojitoID, Quantity: 1}}}

	received := f.submit(t, OrderLine{MenuItemID: burgerID, Quantity: 1})
	updated, err := f.orders.AddItems(ctx, bizID, received.ID, more)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, updated.Status)

	ready := f.submit(t, OrderLine{MenuItemID: burgerID, Quantity: 1})
	f.setStatus(t, ready.Items[0].ID, models.OrderItemPreparing)
	res := f.setStatus(t, ready.Items[0].ID, models.OrderItemReady)
	require.Equal(t, models.OrderStatusAllItemsReady, res.OrderStatus)
	updated, err = f.orders.AddItems(ctx, bizID, ready.ID, more)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, updated.Status)

	partial := f.submit(t,
		OrderLine{MenuItemID: burgerID, Quantity: 1},
		OrderLine{MenuItemID: mojitoID, Quantity: 1},
	)
	f.setStatus(t, partial.Items[0].ID, models.OrderItemPreparing)
	res = f.setStatus(t, partial.Items[0].ID, models.OrderItemReady)
	require.Equal(t, models.OrderStatusPartiallyReady, res.OrderStatus)
	updated, err = f.orders.AddItems(ctx, bizID, partial.ID, more)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPartiallyReady, updated.Status)
}

func TestAddItemsRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.submit(t, OrderLine{MenuItemID: mojitoID, Quantity: 1})

	_, err := f.orders.AddItems(ctx, bizID, "missing", AddItemsInput{Items: []OrderLine{{MenuItemID: burgerID, Quantity: 1}}})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.orders.AddItems(ctx, otherBizID, order.ID, AddItemsInput{Items: []OrderLine{{MenuItemID: burgerID, Quantity: 1}}})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.orders.AddItems(ctx, bizID, order.ID, AddItemsInput{Items: []OrderLine{
		{MenuItemID: burgerID, Quantity: 1},
		{MenuItemID: soldOutID, Quantity: 1},
	}})
	assert.Equal(t, KindBadRequest, KindOf(err))
	assert.Equal(t, 1, f.store.OrderItemCount())

	f.setStatus(t, order.Items[0].ID, models.OrderItemCancelled)
	_, err = f.orders.AddItems(ctx, bizID, order.ID, AddItemsInput{Items: []OrderLine{{MenuItemID: burgerID, Quantity: 1}}})
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestGetOrderScopedToBusiness(t *testing.T) {
	f := newFixture(t)
	order := f.submit(t, OrderLine{MenuItemID: burgerID, Quantity: 1, SelectedModifierOptionIDs: []string{baconID}})

	got, err := f.orders.GetOrder(context.Background(), bizID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Bacon", got.Items[0].SelectedModifiers[0].OptionNameSnapshot)

	_, err = f.orders.GetOrder(context.Background(), otherBizID, order.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
