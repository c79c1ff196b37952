package models

import "time"

// Role is the closed set of actors in the marketplace. Every order
// transition is gated on one or more of these.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
	RoleDSP      Role = "dsp" // delivery service provider
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMerchant, RoleDSP, RoleAdmin:
		return true
	}
	return false
}

// Location is a plain lat/lng pair, embedded wherever a point is stored.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

type User struct {
	ID        string   `gorm:"primaryKey" json:"id"`
	Email     string   `gorm:"unique;not null" json:"email"`
	Phone     string   `json:"phone"`
	Name      string   `json:"name"`
	Role      Role     `gorm:"type:VARCHAR(16);not null" json:"role"`
	Approved  bool     `json:"approved"` // merchants and DSPs require admin approval
	Location  Location `gorm:"embedded" json:"location"`
	CreatedAt time.Time `json:"created_at"`
}
