package models

import "time"

type Business struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	Slug             string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive         bool      `gorm:"not null" json:"is_active"`
	IsOrderingActive bool      `gorm:"not null" json:"is_ordering_active"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}
