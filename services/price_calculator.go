package services

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/camarero-fulfillment/models"
)

type PriceBreakdown struct {
	BasePrice       decimal.Decimal
	ModifiersTotal  decimal.Decimal
	PriceAtPurchase decimal.Decimal
	TotalItemPrice  decimal.Decimal
}

type PriceCalculator struct{}

// Calculate prices one line: base plus every adjustment, times quantity.
func (PriceCalculator) Calculate(basePrice decimal.Decimal, options []models.ModifierOption, quantity int) (PriceBreakdown, error) {
	if quantity <= 0 {
		return PriceBreakdown{}, BadRequest("quantity must be greater than zero, got %d", quantity)
	}

	modifiers := decimal.Zero
	for _, o := range options {
		modifiers = modifiers.Add(o.PriceAdjustment)
	}
	unit := basePrice.Add(modifiers)

	return PriceBreakdown{
		BasePrice:       basePrice,
		ModifiersTotal:  modifiers,
		PriceAtPurchase: unit,
		TotalItemPrice:  unit.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}
