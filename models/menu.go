package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is live catalog data. Orders copy what they need from it at submission time.
type MenuItem struct {
	ID             string          `gorm:"type:char(36);primaryKey" json:"id"`
	BusinessID     string          `gorm:"type:char(36);not null;index" json:"business_id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable    bool            `gorm:"not null" json:"is_available"`
	KdsDestination *string         `gorm:"type:varchar(50)" json:"kds_destination,omitempty"`
	Position       int             `gorm:"not null" json:"position"`
	ModifierGroups []ModifierGroup `gorm:"foreignKey:MenuItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"modifier_groups"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

type ModifierGroup struct {
	ID            string           `gorm:"type:char(36);primaryKey" json:"id"`
	MenuItemID    string           `gorm:"type:char(36);not null;index" json:"menu_item_id"`
	Name          string           `gorm:"type:varchar(255);not null" json:"name"`
	SelectionType SelectionType    `gorm:"type:varchar(20);not null" json:"selection_type"`
	IsRequired    bool             `gorm:"not null" json:"is_required"`
	MinSelections int              `gorm:"not null" json:"min_selections"`
	MaxSelections int              `gorm:"not null" json:"max_selections"`
	Position      int              `gorm:"not null" json:"position"`
	Options       []ModifierOption `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options"`
	CreatedAt     time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"not null" json:"updated_at"`
}

// EffectiveMaxSelections caps single-choice groups at one regardless of configuration.
func (g ModifierGroup) EffectiveMaxSelections() int {
	if g.SelectionType == SelectionRadio && g.MaxSelections > 1 {
		return 1
	}
	return g.MaxSelections
}

type ModifierOption struct {
	ID              string          `gorm:"type:char(36);primaryKey" json:"id"`
	GroupID         string          `gorm:"type:char(36);not null;index" json:"group_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_adjustment"`
	IsAvailable     bool            `gorm:"not null" json:"is_available"`
	IsDefault       bool            `gorm:"not null" json:"is_default"`
	Position        int             `gorm:"not null" json:"position"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}
