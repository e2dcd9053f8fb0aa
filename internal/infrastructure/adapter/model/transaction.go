package model

import (
	"time"
)

// Transaction represents the database model for credit ledger entries.
// ExternalPaymentID carries a unique index; NULLs are exempt, so only rows
// originating from a payment event participate in the idempotency guard.
type Transaction struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	Reference         string    `gorm:"uniqueIndex;not null;size:64"`
	UserID            uint64    `gorm:"not null;index"`
	Amount            int64     `gorm:"not null"`
	Type              string    `gorm:"not null;size:20;index"`
	Description       string    `gorm:"size:255"`
	ExternalPaymentID *string   `gorm:"uniqueIndex;size:255"`
	BalanceAfter      int64     `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null;index"`

	User User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "credit_transactions"
}
