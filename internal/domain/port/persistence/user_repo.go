package persistence

import (
	"context"

	"github.com/reelkit/credits-service/internal/domain/entity"
)

// UserRepository defines essential methods to interact with user balance data
type UserRepository interface {
	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.User, error)

	// Create creates a new user with its starting balance
	//
	// Possible errors:
	// - ErrDuplicateUser: If user with same ID already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, user *entity.User) error

	// DeductCredits decrements the balance by amount in a single guarded
	// statement (credits compared and decremented server-side). This is the
	// sole mechanism preventing concurrent overspend: two racing debits can
	// never both succeed past zero. Returns the new balance and true when the
	// guard held, or the unchanged balance and false on insufficient credits.
	//
	// Possible errors:
	// - ErrUserNotFound: If user doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	DeductCredits(ctx context.Context, userID uint64, amount int64) (int64, bool, error)

	// AddCredits unconditionally increments the balance by amount and returns
	// the new balance.
	//
	// Possible errors:
	// - ErrUserNotFound: If user doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	AddCredits(ctx context.Context, userID uint64, amount int64) (int64, error)
}
