package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/reelkit/credits-service/internal/domain/entity"
	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements the ledger repository port using GORM.
// The ledger is insert-only; there is no update path.
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a ledger entity to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	var externalPaymentID *string
	if transaction.ExternalPaymentID != "" {
		id := transaction.ExternalPaymentID
		externalPaymentID = &id
	}

	return model.Transaction{
		Reference:         transaction.Reference,
		UserID:            transaction.UserID,
		Amount:            transaction.Amount,
		Type:              string(transaction.Type),
		Description:       transaction.Description,
		ExternalPaymentID: externalPaymentID,
		BalanceAfter:      transaction.BalanceAfter,
		CreatedAt:         transaction.CreatedAt,
	}
}

// modelToEntity converts a database model to a ledger entity
func (r *TransactionRepository) modelToEntity(transactionModel *model.Transaction) *entity.Transaction {
	externalPaymentID := ""
	if transactionModel.ExternalPaymentID != nil {
		externalPaymentID = *transactionModel.ExternalPaymentID
	}

	return &entity.Transaction{
		ID:                transactionModel.ID,
		Reference:         transactionModel.Reference,
		UserID:            transactionModel.UserID,
		Amount:            transactionModel.Amount,
		Type:              entity.TransactionType(transactionModel.Type),
		Description:       transactionModel.Description,
		ExternalPaymentID: externalPaymentID,
		BalanceAfter:      transactionModel.BalanceAfter,
		CreatedAt:         transactionModel.CreatedAt,
	}
}

// Create appends a new ledger entry. A unique-index violation on the external
// payment id surfaces as ErrDuplicatePayment so callers can treat the event
// as already processed.
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Create(&transactionModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate ledger entry rejected", map[string]any{
				"reference":           transaction.Reference,
				"user_id":             transaction.UserID,
				"external_payment_id": transaction.ExternalPaymentID,
			})
			return errs.ErrDuplicatePayment
		}

		r.logger.Error("Failed to append ledger entry", map[string]any{
			"reference": transaction.Reference,
			"user_id":   transaction.UserID,
			"error":     result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	transaction.ID = transactionModel.ID
	return nil
}

// GetByReference retrieves a ledger entry by its unique reference
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&transactionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&transactionModel), nil
}

// ListByUser returns the user's newest ledger entries
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Transaction, error) {
	var transactionModels []model.Transaction
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactionModels)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	transactions := make([]*entity.Transaction, 0, len(transactionModels))
	for i := range transactionModels {
		transactions = append(transactions, r.modelToEntity(&transactionModels[i]))
	}

	return transactions, nil
}

// ExternalPaymentExists checks whether an entry for the given external
// payment id was already recorded
func (r *TransactionRepository) ExternalPaymentExists(ctx context.Context, externalPaymentID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("external_payment_id = ?", externalPaymentID).
		Count(&count)

	if result.Error != nil {
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return count > 0, nil
}

// SumByUser returns the sum of all ledger amounts for a user
func (r *TransactionRepository) SumByUser(ctx context.Context, userID uint64) (int64, error) {
	var sum int64
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum)

	if result.Error != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return sum, nil
}
