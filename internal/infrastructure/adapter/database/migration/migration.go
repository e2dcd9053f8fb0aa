package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/domain/port/persistence"
	"github.com/reelkit/credits-service/internal/domain/usecase/cost"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CurrentSchemaVersion represents the current database schema version
const CurrentSchemaVersion = "1.1.0"

// Manager runs code-first migrations and seed data
type Manager struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewManager creates a new migration manager
func NewManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	return &Manager{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// MigrateAll performs all migrations and seeds
func (m *Manager) MigrateAll() error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
	})

	if err := m.db.AutoMigrate(&model.MigrationVersion{}); err != nil {
		return fmt.Errorf("failed to create migration version table: %w", err)
	}

	currentVersion, err := m.currentVersion()
	if err != nil {
		return err
	}

	if currentVersion != CurrentSchemaVersion {
		if err := m.db.AutoMigrate(
			&model.User{},
			&model.Transaction{},
			&model.Setting{},
		); err != nil {
			m.logger.Error("Failed to migrate models", map[string]any{"error": err.Error()})
			return fmt.Errorf("failed to migrate models: %w", err)
		}

		if err := m.recordVersion(CurrentSchemaVersion); err != nil {
			return err
		}

		m.logger.Info("Database migrated", map[string]any{
			"from": currentVersion,
			"to":   CurrentSchemaVersion,
		})
	}

	return m.seedUsageCosts()
}

// seedUsageCosts writes the compiled default cost table into settings when no
// override has ever been stored.
func (m *Manager) seedUsageCosts() error {
	var setting model.Setting
	err := m.db.First(&setting, "key = ?", persistence.SettingKeyUsageCosts).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to read usage cost setting: %w", err)
	}

	raw, err := json.Marshal(cost.DefaultCostTable())
	if err != nil {
		return fmt.Errorf("failed to encode default cost table: %w", err)
	}

	setting = model.Setting{
		Key:       persistence.SettingKeyUsageCosts,
		Value:     datatypes.JSON(raw),
		Version:   1,
		UpdatedAt: m.timeProvider.Now(),
	}
	if err := m.db.Create(&setting).Error; err != nil {
		return fmt.Errorf("failed to seed usage cost setting: %w", err)
	}

	m.logger.Info("Seeded default usage cost table", nil)
	return nil
}

// currentVersion reads the last applied schema version
func (m *Manager) currentVersion() (string, error) {
	var version model.MigrationVersion
	err := m.db.Order("applied_at DESC").First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read schema version: %w", err)
	}
	return version.Version, nil
}

// recordVersion stores the applied schema version
func (m *Manager) recordVersion(version string) error {
	record := model.MigrationVersion{
		Version:   version,
		AppliedAt: m.timeProvider.Now(),
	}
	if err := m.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// EnsureUser creates a user with the given id if it does not exist yet.
// Used to provision demo accounts in development environments.
func EnsureUser(ctx context.Context, db *gorm.DB, timeProvider coreport.TimeProvider, userID uint64, credits int64) error {
	var existing model.User
	err := db.WithContext(ctx).First(&existing, userID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := timeProvider.Now()
	return db.WithContext(ctx).Create(&model.User{
		ID:        userID,
		Credits:   credits,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}
