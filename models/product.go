package models

import (
	"time"

	"gorm.io/gorm"
)

// Product prices are stored in minor units (cents) so order totals and
// ledger amounts compare exactly, with no float drift.
type Product struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MerchantID  uint   `gorm:"index;not null" json:"merchant_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `gorm:"not null" json:"price"`
	Stock       int    `json:"stock_quantity"` // never allowed below zero
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
