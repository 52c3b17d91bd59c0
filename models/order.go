package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          string          `gorm:"type:char(36);primaryKey" json:"id"`
	BusinessID  string          `gorm:"type:char(36);not null;uniqueIndex:idx_orders_business_number;index:idx_orders_business_created" json:"business_id"`
	OrderNumber string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_orders_business_number" json:"order_number"`
	TableID     *string         `gorm:"type:char(36);index" json:"table_id,omitempty"`
	Table       *Table          `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"table,omitempty"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null" json:"status"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time       `gorm:"not null;index:idx_orders_business_created" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}
