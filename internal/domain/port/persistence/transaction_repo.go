package persistence

import (
	"context"

	"github.com/reelkit/credits-service/internal/domain/entity"
)

// TransactionRepository defines essential methods to interact with the
// append-only credit ledger
type TransactionRepository interface {
	// Create appends a new ledger entry. Entries are never updated or deleted.
	//
	// Possible errors:
	// - ErrDuplicatePayment: If an entry with the same external payment id exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByReference retrieves a ledger entry by its unique reference
	//
	// Possible errors:
	// - ErrTransactionNotFound: If no entry with the given reference exists
	// - ErrDatabaseConnection: If database connection fails
	GetByReference(ctx context.Context, reference string) (*entity.Transaction, error)

	// ListByUser returns the newest ledger entries for a user, most recent first
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Transaction, error)

	// ExternalPaymentExists checks whether an entry for the given external
	// payment id was already recorded. Used for webhook idempotency.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	ExternalPaymentExists(ctx context.Context, externalPaymentID string) (bool, error)

	// SumByUser returns the sum of all ledger amounts for a user. Used to
	// reconcile the materialized balance against the ledger.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	SumByUser(ctx context.Context, userID uint64) (int64, error)
}
