package repository

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SettingRepository implements the setting repository port using GORM
type SettingRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewSettingRepository creates a new SettingRepository instance
func NewSettingRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *SettingRepository {
	return &SettingRepository{
		db:           db,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Get returns the raw JSON value and version for a key
func (r *SettingRepository) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var setting model.Setting
	result := r.db.WithContext(ctx).First(&setting, "key = ?", key)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: setting %s", errs.ErrCostConfigMissing, key)
		}
		return nil, 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return []byte(setting.Value), setting.Version, nil
}

// Set writes the value for a key, bumping its version. Creates the row if it
// does not exist.
func (r *SettingRepository) Set(ctx context.Context, key string, value []byte) (int64, error) {
	var version int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var setting model.Setting
		result := tx.First(&setting, "key = ?", key)

		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			setting = model.Setting{
				Key:       key,
				Value:     datatypes.JSON(value),
				Version:   1,
				UpdatedAt: r.timeProvider.Now(),
			}
			if err := tx.Create(&setting).Error; err != nil {
				return err
			}
			version = setting.Version
			return nil
		}

		version = setting.Version + 1
		return tx.Model(&model.Setting{}).
			Where("key = ?", key).
			Updates(map[string]interface{}{
				"value":      datatypes.JSON(value),
				"version":    version,
				"updated_at": r.timeProvider.Now(),
			}).Error
	})

	if err != nil {
		r.logger.Error("Failed to write setting", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	r.logger.Info("Setting updated", map[string]any{
		"key":     key,
		"version": version,
	})

	return version, nil
}
