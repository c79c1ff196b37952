package models

import "time"

// Merchant is the store profile behind a set of products. The owning
// user carries the merchant role; the profile holds what orders snapshot.
type Merchant struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	UserID    string   `gorm:"uniqueIndex;not null" json:"user_id"`
	StoreName string   `gorm:"not null" json:"store_name"`
	Location  Location `gorm:"embedded" json:"location"`
	CreatedAt time.Time `json:"created_at"`
}
