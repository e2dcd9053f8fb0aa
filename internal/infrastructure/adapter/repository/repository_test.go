package repository

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/logger"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/model"
	timeadapter "github.com/reelkit/credits-service/internal/infrastructure/adapter/time"
)

// setupTestDB opens a file-backed sqlite database in a per-test temp dir.
// A file (not :memory:) so multiple connections see the same data, with a
// generous busy timeout so concurrent writers queue instead of failing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(10000)", filepath.Join(t.TempDir(), "credits_test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Transaction{}, &model.Setting{}))

	return db
}

func testTimeProvider() coreport.TimeProvider {
	return timeadapter.NewRealTimeProvider()
}

func testLogger() coreport.Logger {
	return logger.NewNoopLogger()
}
