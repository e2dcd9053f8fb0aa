package database

import (
	"context"
	"time"

	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold marks queries worth a warning
const slowQueryThreshold = 200 * time.Millisecond

// GormLogger adapts the domain Logger to GORM's logger interface
type GormLogger struct {
	logger coreport.Logger
}

// NewGormLogger creates a GORM logger backed by the domain logger
func NewGormLogger(logger coreport.Logger) *GormLogger {
	return &GormLogger{logger: logger}
}

// LogMode implements gorm logger.Interface; level is managed by the domain logger
func (l *GormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

// Info logs informational messages from GORM
func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	l.logger.Info(msg, map[string]any{"data": data})
}

// Warn logs warnings from GORM
func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	l.logger.Warn(msg, map[string]any{"data": data})
}

// Error logs errors from GORM
func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	l.logger.Error(msg, map[string]any{"data": data})
}

// Trace logs SQL execution, surfacing slow queries and errors
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil:
		l.logger.Debug("Query failed", map[string]any{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
			"error":      err.Error(),
		})
	case elapsed > slowQueryThreshold:
		l.logger.Warn("Slow query", map[string]any{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}
}
