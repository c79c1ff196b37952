package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	// Fulfillment flow:
	// PENDING -> CONFIRMED -> DspAssigned -> {DspAccepted | DspRejected} -> OnShipping -> DELIVERED
	// with DspRejected -> DspAssigned as the only back-edge (reassignment).
	OrderStatusPending     OrderStatus = "PENDING"     // placed, awaiting merchant confirmation
	OrderStatusConfirmed   OrderStatus = "CONFIRMED"   // confirmed, ready for DSP assignment
	OrderStatusDspAssigned OrderStatus = "DspAssigned" // a courier has been assigned
	OrderStatusDspAccepted OrderStatus = "DspAccepted" // courier accepted the job
	OrderStatusDspRejected OrderStatus = "DspRejected" // courier declined, awaiting reassignment
	OrderStatusOnShipping  OrderStatus = "OnShipping"  // out for delivery
	OrderStatusDelivered   OrderStatus = "DELIVERED"   // customer confirmed receipt
	// Declared terminal state; no transition currently reaches it.
	OrderStatusCancelled OrderStatus = "CANCELLED"

	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type PaymentDetails struct {
	AmountCents int64         `json:"amount"`
	Status      PaymentStatus `gorm:"type:VARCHAR(20)" json:"status"`
}

// Order is the aggregate root of fulfillment: items carry a merchant
// snapshot taken at placement time and are never re-synced; the total and
// delivery location are immutable after creation; only Status, DspID,
// MerchantNotified and the payment status move, and only through the
// order flow service.
type Order struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	OrderRef         string         `gorm:"uniqueIndex" json:"order_ref"`
	CustomerID       string         `gorm:"not null;index" json:"customer_id"`
	Customer         User           `gorm:"foreignKey:CustomerID" json:"customer"`
	Items            []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalCents       int64          `json:"total_amount"`
	DeliveryLocation Location       `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery_location"`
	Payment          PaymentDetails `gorm:"embedded;embeddedPrefix:payment_" json:"payment_details"`
	Status           OrderStatus    `gorm:"type:VARCHAR(20);default:'PENDING'" json:"order_status"`
	DspID            *string        `gorm:"index" json:"dsp_assigned,omitempty"`
	MerchantNotified bool           `json:"merchant_notified"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     uint   `gorm:"index" json:"order_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	PriceCents  int64  `json:"price"` // unit price at order time
	Quantity    int    `json:"quantity"`

	// Merchant snapshot, denormalized for fast reads.
	MerchantID       uint     `json:"merchant_id"`
	StoreName        string   `json:"store_name"`
	MerchantLocation Location `gorm:"embedded;embeddedPrefix:merchant_" json:"merchant_location"`
}

// LineTotal is quantity times the unit price captured at order time.
func (i OrderItem) LineTotal() int64 {
	return i.PriceCents * int64(i.Quantity)
}
