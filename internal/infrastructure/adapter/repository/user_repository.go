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

// UserRepository implements the UserRepository port using GORM
type UserRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *UserRepository {
	return &UserRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// modelToEntity converts a user model to an entity
func (r *UserRepository) modelToEntity(userModel *model.User) (*entity.User, error) {
	user, err := entity.NewUser(userModel.ID, userModel.Credits, r.timeProvider)
	if err != nil {
		r.logger.Error("Failed to create user entity", map[string]any{
			"user_id": userModel.ID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: failed to create user entity: %s", errs.ErrInternalServer, err.Error())
	}

	user.CreatedAt = userModel.CreatedAt
	user.UpdatedAt = userModel.UpdatedAt
	user.TransactionCount = userModel.TransactionCount

	return user, nil
}

// handleDatabaseError standardizes database error handling
func (r *UserRepository) handleDatabaseError(operation string, err error, userID uint64) error {
	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"user_id": userID,
		"error":   err.Error(),
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrUserNotFound
	}

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return errs.ErrDuplicateUser
	}

	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	var userModel model.User
	result := r.db.WithContext(ctx).First(&userModel, id)

	if result.Error != nil {
		return nil, r.handleDatabaseError("getting user", result.Error, id)
	}

	return r.modelToEntity(&userModel)
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := model.User{
		ID:               user.ID,
		Credits:          user.Credits(),
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
		TransactionCount: user.TransactionCount,
	}

	result := r.db.WithContext(ctx).Create(&userModel)
	if result.Error != nil {
		return r.handleDatabaseError("creating user", result.Error, user.ID)
	}

	r.logger.Info("User created", map[string]any{
		"user_id": user.ID,
		"credits": user.Credits(),
	})
	return nil
}

// DeductCredits decrements the balance with the guard expressed in the WHERE
// clause. The comparison and the decrement happen in one statement on the
// database server, so two concurrent debits can never both succeed past zero
// regardless of interleaving. Rows-affected tells us whether the guard held.
func (r *UserRepository) DeductCredits(ctx context.Context, userID uint64, amount int64) (int64, bool, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND credits >= ?", userID, amount).
		Updates(map[string]interface{}{
			"credits":           gorm.Expr("credits - ?", amount),
			"transaction_count": gorm.Expr("transaction_count + 1"),
			"updated_at":        r.timeProvider.Now(),
		})

	if result.Error != nil {
		return 0, false, r.handleDatabaseError("deducting credits", result.Error, userID)
	}

	var userModel model.User
	if err := r.db.WithContext(ctx).First(&userModel, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, errs.ErrUserNotFound
		}
		return 0, false, r.handleDatabaseError("reading balance after debit", err, userID)
	}

	if result.RowsAffected == 0 {
		// Guard failed: the row exists but held fewer credits than requested
		return userModel.Credits, false, nil
	}

	return userModel.Credits, true, nil
}

// AddCredits unconditionally increments the balance
func (r *UserRepository) AddCredits(ctx context.Context, userID uint64, amount int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"credits":           gorm.Expr("credits + ?", amount),
			"transaction_count": gorm.Expr("transaction_count + 1"),
			"updated_at":        r.timeProvider.Now(),
		})

	if result.Error != nil {
		return 0, r.handleDatabaseError("adding credits", result.Error, userID)
	}

	if result.RowsAffected == 0 {
		return 0, errs.ErrUserNotFound
	}

	var userModel model.User
	if err := r.db.WithContext(ctx).First(&userModel, userID).Error; err != nil {
		return 0, r.handleDatabaseError("reading balance after credit", err, userID)
	}

	return userModel.Credits, nil
}
