package entity

import (
	"time"

	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
)

// User represents a platform user owning a credit balance.
// The balance is the materialized sum of the user's ledger entries and is
// only ever mutated through the ledger service.
type User struct {
	ID               uint64    // Unique identifier for the user
	credits          int64     // Remaining credits (private, never negative)
	CreatedAt        time.Time // When the user was created
	UpdatedAt        time.Time // When the user was last updated
	TransactionCount uint64    // Count of ledger entries recorded for this user
}

// NewUser creates a new user with the given ID and initial credit balance
func NewUser(id uint64, initialCredits int64, timeProvider coreport.TimeProvider) (*User, error) {
	if id == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if initialCredits < 0 {
		return nil, errs.ErrInvalidAmount
	}

	now := timeProvider.Now()
	return &User{
		ID:               id,
		credits:          initialCredits,
		CreatedAt:        now,
		UpdatedAt:        now,
		TransactionCount: 0,
	}, nil
}

// Credits returns the current credit balance
func (u *User) Credits() int64 {
	return u.credits
}

// SetCredits updates the balance directly (for internal use, like repositories)
func (u *User) SetCredits(credits int64, timeProvider coreport.TimeProvider) {
	u.credits = credits
	u.UpdatedAt = timeProvider.Now()
}

// CanAfford checks if the user has enough credits for a debit of the given cost.
// Advisory only: the balance may change between this check and the debit.
func (u *User) CanAfford(cost int64) bool {
	return u.credits >= cost
}

// ApplyCredit adds the amount to the balance
func (u *User) ApplyCredit(amount int64, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	u.credits += amount
	u.UpdatedAt = timeProvider.Now()
	u.TransactionCount++
	return nil
}

// ApplyDebit subtracts the amount from the balance if enough credits remain
func (u *User) ApplyDebit(amount int64, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	if u.credits < amount {
		return errs.NewInsufficientCreditsError(amount, u.credits)
	}
	u.credits -= amount
	u.UpdatedAt = timeProvider.Now()
	u.TransactionCount++
	return nil
}
