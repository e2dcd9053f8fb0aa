package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/reelkit/credits-service/internal/domain/entity"
	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/domain/port/persistence"
)

// Service coordinates atomic check/debit/credit operations against the
// balance store and the append-only ledger. Every balance mutation and its
// ledger entry commit inside one database transaction.
//
// Concurrency safety for debits relies entirely on the repository's guarded
// decrement (credits compared and decremented in a single statement); the
// service holds no locks of its own.
type Service struct {
	uow            persistence.UnitOfWork
	timeProvider   coreport.TimeProvider
	logger         coreport.Logger
	refundsEnabled bool
}

// NewService creates a new ledger service. refundsEnabled controls whether
// RefundCredits is available.
func NewService(
	uow persistence.UnitOfWork,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	refundsEnabled bool,
) *Service {
	return &Service{
		uow:            uow,
		timeProvider:   timeProvider,
		logger:         logger,
		refundsEnabled: refundsEnabled,
	}
}

// CheckCredits reports whether the user's current balance covers cost, along
// with the balance itself. Advisory only: this is not a reservation, and the
// balance may change before a subsequent debit.
func (s *Service) CheckCredits(ctx context.Context, userID uint64, cost int64) (bool, int64, error) {
	if userID == 0 {
		return false, 0, errs.ErrInvalidUserID
	}
	if cost < 0 {
		return false, 0, errs.ErrInvalidAmount
	}

	user, err := s.uow.GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return false, 0, err
	}

	return user.CanAfford(cost), user.Credits(), nil
}

// DeductCredits atomically decrements the balance by amount, conditioned on
// enough credits remaining, and appends a usage ledger entry. Returns an
// InsufficientCreditsError (carrying required vs available) when the guard
// fails; the balance is untouched and no entry is appended in that case.
func (s *Service) DeductCredits(ctx context.Context, userID uint64, amount int64, description string) (*entity.Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	newBalance, ok, err := s.uow.GetUserRepository(txCtx).DeductCredits(txCtx, userID, amount)
	if err != nil {
		s.rollback(txCtx)
		return nil, err
	}
	if !ok {
		s.rollback(txCtx)
		s.logger.Warn("Debit refused, insufficient credits", map[string]any{
			"user_id":   userID,
			"required":  amount,
			"available": newBalance,
		})
		return nil, errs.NewInsufficientCreditsError(amount, newBalance)
	}

	txn, err := entity.NewUsageTransaction(userID, amount, description, s.timeProvider)
	if err != nil {
		s.rollback(txCtx)
		return nil, err
	}
	txn.BalanceAfter = newBalance

	if err := s.uow.GetTransactionRepository(txCtx).Create(txCtx, txn); err != nil {
		s.rollback(txCtx)
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("failed to commit debit: %w", err)
	}

	s.logger.Info("Credits deducted", map[string]any{
		"user_id":     userID,
		"amount":      amount,
		"new_balance": newBalance,
		"reference":   txn.Reference,
	})

	return txn, nil
}

// AddCredits unconditionally increments the balance and appends a positive
// ledger entry of the given type. When externalPaymentID is set, the ledger's
// unique index on it makes the operation idempotent: a second delivery of the
// same payment event rolls back and returns ErrDuplicatePayment without
// crediting twice.
func (s *Service) AddCredits(
	ctx context.Context,
	userID uint64,
	amount int64,
	txType entity.TransactionType,
	description string,
	externalPaymentID string,
) (*entity.Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	txn, err := entity.NewCreditTransaction(userID, amount, txType, description, externalPaymentID, s.timeProvider)
	if err != nil {
		return nil, err
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	newBalance, err := s.uow.GetUserRepository(txCtx).AddCredits(txCtx, userID, amount)
	if err != nil {
		s.rollback(txCtx)
		return nil, err
	}
	txn.BalanceAfter = newBalance

	if err := s.uow.GetTransactionRepository(txCtx).Create(txCtx, txn); err != nil {
		s.rollback(txCtx)
		if errors.Is(err, errs.ErrDuplicatePayment) {
			s.logger.Warn("Duplicate payment event ignored", map[string]any{
				"user_id":             userID,
				"external_payment_id": externalPaymentID,
			})
		}
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("failed to commit credit: %w", err)
	}

	s.logger.Info("Credits added", map[string]any{
		"user_id":     userID,
		"amount":      amount,
		"type":        string(txType),
		"new_balance": newBalance,
		"reference":   txn.Reference,
	})

	return txn, nil
}

// RefundCredits returns previously debited credits to the user. Available
// only when the refund policy is enabled.
func (s *Service) RefundCredits(ctx context.Context, userID uint64, amount int64, description string) (*entity.Transaction, error) {
	if !s.refundsEnabled {
		return nil, errs.ErrRefundsDisabled
	}
	return s.AddCredits(ctx, userID, amount, entity.TypeRefund, description, "")
}

// VerifyLedger checks that the materialized balance equals the sum of the
// user's ledger entries. A mismatch is reported rather than treated as fatal
// so operators can reconcile manually.
func (s *Service) VerifyLedger(ctx context.Context, userID uint64) (bool, error) {
	if userID == 0 {
		return false, errs.ErrInvalidUserID
	}

	user, err := s.uow.GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	sum, err := s.uow.GetTransactionRepository(ctx).SumByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if sum != user.Credits() {
		s.logger.Warn("Ledger does not reconcile with balance", map[string]any{
			"user_id":    userID,
			"balance":    user.Credits(),
			"ledger_sum": sum,
		})
		return false, nil
	}

	return true, nil
}

// RefundsEnabled reports the configured refund policy
func (s *Service) RefundsEnabled() bool {
	return s.refundsEnabled
}

func (s *Service) rollback(ctx context.Context) {
	if err := s.uow.Rollback(ctx); err != nil {
		s.logger.Error("Failed to rollback ledger transaction", map[string]any{
			"error": err.Error(),
		})
	}
}
