package user

import (
	"context"

	"github.com/reelkit/credits-service/internal/domain/entity"
	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/domain/port/persistence"
	"github.com/reelkit/credits-service/internal/domain/usecase/ledger"
)

// BalanceResponse is the standardized balance payload
type BalanceResponse struct {
	UserID  uint64 `json:"userId"`
	Credits int64  `json:"credits"`
}

// UseCase implements user-facing account operations. Balances are created
// here at signup; they are mutated only through the ledger service.
type UseCase struct {
	userRepo        persistence.UserRepository
	transactionRepo persistence.TransactionRepository
	ledger          *ledger.Service
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	signupBonus     int64
}

// NewUseCase creates a new user use case instance
func NewUseCase(
	userRepo persistence.UserRepository,
	transactionRepo persistence.TransactionRepository,
	ledgerService *ledger.Service,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	signupBonus int64,
) *UseCase {
	return &UseCase{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		ledger:          ledgerService,
		timeProvider:    timeProvider,
		logger:          logger,
		signupBonus:     signupBonus,
	}
}

// CreateUser registers a new user and grants the configured signup bonus.
// The bonus goes through the ledger so the balance and the log stay in step
// from the very first entry.
func (u *UseCase) CreateUser(ctx context.Context, userID uint64) (*entity.User, error) {
	newUser, err := entity.NewUser(userID, 0, u.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	if u.signupBonus > 0 {
		if _, err := u.ledger.AddCredits(ctx, userID, u.signupBonus, entity.TypeBonus, "signup bonus", ""); err != nil {
			u.logger.Error("Failed to grant signup bonus", map[string]any{
				"user_id": userID,
				"bonus":   u.signupBonus,
				"error":   err.Error(),
			})
			return nil, err
		}
		newUser.SetCredits(u.signupBonus, u.timeProvider)
	}

	u.logger.Info("User created", map[string]any{
		"user_id": userID,
		"credits": newUser.Credits(),
	})

	return newUser, nil
}

// GetBalance retrieves the user's remaining credits
func (u *UseCase) GetBalance(ctx context.Context, userID uint64) (*BalanceResponse, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BalanceResponse{
		UserID:  user.ID,
		Credits: user.Credits(),
	}, nil
}

// ListTransactions returns the user's most recent ledger entries
func (u *UseCase) ListTransactions(ctx context.Context, userID uint64, limit int) ([]*entity.Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return u.transactionRepo.ListByUser(ctx, userID, limit)
}
