package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

// OrderLine is one line of a submission as the client sent it.
type OrderLine struct {
	MenuItemID                string   `json:"menu_item_id" binding:"required"`
	Quantity                  int      `json:"quantity"`
	Notes                     *string  `json:"notes"`
	SelectedModifierOptionIDs []string `json:"selected_modifier_option_ids"`
}

// OrderItemAssembler turns submitted lines into priced, snapshotted order items.
type OrderItemAssembler struct {
	Lookup     MenuLookup
	Validator  OrderItemValidator
	Calculator PriceCalculator
}

// Assemble validates and prices every line, then persists them together.
// The first failing line aborts the whole call before anything is written.
func (a OrderItemAssembler) Assemble(tx database.Tx, businessID, orderID string, firstLineNumber int, lines []OrderLine) ([]models.OrderItem, decimal.Decimal, error) {
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	now := time.Now()

	for i, line := range lines {
		menuItem, err := a.Lookup.FetchMenuItemWithModifiers(tx, line.MenuItemID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		selections, err := a.Validator.Validate(menuItem, businessID, line.SelectedModifierOptionIDs)
		if err != nil {
			return nil, decimal.Zero, err
		}

		options := make([]models.ModifierOption, len(selections))
		for j, sel := range selections {
			options[j] = sel.Option
		}
		price, err := a.Calculator.Calculate(menuItem.Price, options, line.Quantity)
		if err != nil {
			return nil, decimal.Zero, err
		}

		itemID := uuid.NewString()
		snapshots := make([]models.OrderItemModifierOption, len(selections))
		for j, sel := range selections {
			snapshots[j] = models.OrderItemModifierOption{
				ID:                            uuid.NewString(),
				OrderItemID:                   itemID,
				ModifierOptionID:              sel.Option.ID,
				Position:                      j,
				OptionNameSnapshot:            sel.Option.Name,
				OptionPriceAdjustmentSnapshot: sel.Option.PriceAdjustment,
				CreatedAt:                     now,
			}
		}

		items = append(items, models.OrderItem{
			ID:                      itemID,
			OrderID:                 orderID,
			MenuItemID:              menuItem.ID,
			LineNumber:              firstLineNumber + i,
			Quantity:                line.Quantity,
			BasePriceAtPurchase:     price.BasePrice,
			PriceAtPurchase:         price.PriceAtPurchase,
			TotalItemPrice:          price.TotalItemPrice,
			Notes:                   line.Notes,
			KdsDestination:          menuItem.KdsDestination,
			ItemNameSnapshot:        menuItem.Name,
			ItemDescriptionSnapshot: menuItem.Description,
			Status:                  models.OrderItemPendingKDS,
			SelectedModifiers:       snapshots,
			CreatedAt:               now,
			UpdatedAt:               now,
		})
		total = total.Add(price.TotalItemPrice)
	}

	if err := tx.CreateOrderItems(items); err != nil {
		return nil, decimal.Zero, asAppError(err, "failed to persist order items")
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"business_id": businessID,
		"order_id":    orderID,
		"items":       len(items),
	}).Info("Order items assembled")
	return items, total, nil
}
