package models

import "time"

type Table struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	BusinessID string    `gorm:"type:char(36);not null;uniqueIndex:idx_tables_business_identifier" json:"business_id"`
	Identifier string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_tables_business_identifier" json:"identifier"`
	Status     string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
