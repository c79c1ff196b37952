package models

import "time"

type AccountType string
type AccountStatus string
type TransactionType string

const (
	AccountTypeMerchant AccountType = "merchant"
	AccountTypeDSP      AccountType = "dsp"

	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"

	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

func (t AccountType) Valid() bool {
	return t == AccountTypeMerchant || t == AccountTypeDSP
}

func (t TransactionType) Valid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

// PaymentAccount holds a running balance in minor units. One account per
// (user, type) pair; the balance must always equal the sum of credits
// minus the sum of debits over the account's transactions.
type PaymentAccount struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       string        `gorm:"index:idx_account_owner,unique;not null" json:"user_id"`
	Type         AccountType   `gorm:"index:idx_account_owner,unique;type:VARCHAR(16);not null" json:"account_type"`
	BalanceCents int64         `json:"balance"` // may go negative via debits, no overdraft floor
	Status       AccountStatus `gorm:"type:VARCHAR(16);default:'active'" json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PaymentTransaction is an immutable, append-only ledger entry.
type PaymentTransaction struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	AccountID      uint            `gorm:"index;not null" json:"account_id"`
	AmountCents    int64           `gorm:"not null" json:"amount"` // >= 0
	Type           TransactionType `gorm:"type:VARCHAR(16);not null" json:"type"`
	Reason         string          `json:"reason"`
	FromID         string          `json:"from"`
	ToID           string          `json:"to"`
	Reference      string          `json:"reference"` // polymorphic, e.g. an order id
	ReferenceModel string          `json:"reference_model"`
	CreatedAt      time.Time       `json:"created_at"`
}
