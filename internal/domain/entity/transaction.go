package entity

import (
	"time"

	"github.com/google/uuid"
	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
)

// TransactionType classifies a ledger entry
type TransactionType string

// Transaction types
const (
	TypeUsage    TransactionType = "usage"
	TypePurchase TransactionType = "purchase"
	TypeBonus    TransactionType = "bonus"
	TypeRefund   TransactionType = "refund"
	TypeTopup    TransactionType = "topup"
)

// Transaction is an immutable ledger entry recording a single balance mutation.
// Amount is negative for usage debits and positive for credits. Entries are
// appended once and never updated or deleted.
type Transaction struct {
	ID                uint64          // Database identifier
	Reference         string          // Unique reference for this entry
	UserID            uint64          // Owner of the mutated balance
	Amount            int64           // Signed credit delta
	Type              TransactionType // usage, purchase, bonus, refund, topup
	Description       string          // Human-readable context
	ExternalPaymentID string          // Provider event id for purchases, empty otherwise
	BalanceAfter      int64           // Balance immediately after this entry
	CreatedAt         time.Time       // When the entry was recorded
}

// NewUsageTransaction builds a debit entry. The amount is the (positive) cost;
// the stored delta is its negation.
func NewUsageTransaction(userID uint64, amount int64, description string, timeProvider coreport.TimeProvider) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	return &Transaction{
		Reference:   uuid.NewString(),
		UserID:      userID,
		Amount:      -amount,
		Type:        TypeUsage,
		Description: description,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// NewCreditTransaction builds a positive entry of the given type
func NewCreditTransaction(
	userID uint64,
	amount int64,
	txType TransactionType,
	description string,
	externalPaymentID string,
	timeProvider coreport.TimeProvider,
) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	if !isCreditType(txType) {
		return nil, errs.ErrInvalidRequest
	}

	return &Transaction{
		Reference:         uuid.NewString(),
		UserID:            userID,
		Amount:            amount,
		Type:              txType,
		Description:       description,
		ExternalPaymentID: externalPaymentID,
		CreatedAt:         timeProvider.Now(),
	}, nil
}

// IsCredit returns true if this entry increased the balance
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// IsDebit returns true if this entry decreased the balance
func (t *Transaction) IsDebit() bool {
	return t.Amount < 0
}

// IsValidTransactionType validates a transaction type string
func IsValidTransactionType(txType string) bool {
	switch TransactionType(txType) {
	case TypeUsage, TypePurchase, TypeBonus, TypeRefund, TypeTopup:
		return true
	}
	return false
}

func isCreditType(txType TransactionType) bool {
	switch txType {
	case TypePurchase, TypeBonus, TypeRefund, TypeTopup:
		return true
	}
	return false
}
