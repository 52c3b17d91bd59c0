package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem carries snapshots of the catalog taken at submission. Only Status,
// PreparedAt and ServedAt change after creation.
type OrderItem struct {
	ID                      string                    `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID                 string                    `gorm:"type:char(36);not null;index" json:"order_id"`
	MenuItemID              string                    `gorm:"type:char(36);not null" json:"menu_item_id"`
	LineNumber              int                       `gorm:"not null" json:"line_number"`
	Quantity                int                       `gorm:"not null" json:"quantity"`
	BasePriceAtPurchase     decimal.Decimal           `gorm:"type:decimal(10,2);not null" json:"base_price_at_purchase"`
	PriceAtPurchase         decimal.Decimal           `gorm:"type:decimal(10,2);not null" json:"price_at_purchase"`
	TotalItemPrice          decimal.Decimal           `gorm:"type:decimal(10,2);not null" json:"total_item_price"`
	Notes                   *string                   `gorm:"type:text" json:"notes,omitempty"`
	KdsDestination          *string                   `gorm:"type:varchar(50);index:idx_order_items_station" json:"kds_destination,omitempty"`
	ItemNameSnapshot        string                    `gorm:"type:varchar(255);not null" json:"item_name_snapshot"`
	ItemDescriptionSnapshot *string                   `gorm:"type:text" json:"item_description_snapshot,omitempty"`
	Status                  OrderItemStatus           `gorm:"type:varchar(30);not null;index:idx_order_items_station" json:"status"`
	PreparedAt              *time.Time                `json:"prepared_at,omitempty"`
	ServedAt                *time.Time                `json:"served_at,omitempty"`
	SelectedModifiers       []OrderItemModifierOption `gorm:"foreignKey:OrderItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"selected_modifiers"`
	CreatedAt               time.Time                 `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time                 `gorm:"not null" json:"updated_at"`
}

// OrderItemModifierOption is the snapshot of one selected option.
type OrderItemModifierOption struct {
	ID                            string          `gorm:"type:char(36);primaryKey" json:"id"`
	OrderItemID                   string          `gorm:"type:char(36);not null;index" json:"order_item_id"`
	ModifierOptionID              string          `gorm:"type:char(36);not null" json:"modifier_option_id"`
	Position                      int             `gorm:"not null" json:"position"`
	OptionNameSnapshot            string          `gorm:"type:varchar(255);not null" json:"option_name_snapshot"`
	OptionPriceAdjustmentSnapshot decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"option_price_adjustment_snapshot"`
	CreatedAt                     time.Time       `gorm:"not null" json:"created_at"`
}

// ModifiersTotal sums the adjustment snapshots of the selected options.
func (i OrderItem) ModifiersTotal() decimal.Decimal {
	total := decimal.Zero
	for _, m := range i.SelectedModifiers {
		total = total.Add(m.OptionPriceAdjustmentSnapshot)
	}
	return total
}
