package db

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type gormLogger struct {
	logger        *zap.SugaredLogger
	slowThreshold time.Duration
}

// NewGormLogger routes gorm output to zap. Statements are logged at debug
// level, slow ones as warnings and failures as errors.
func NewGormLogger(logger *zap.SugaredLogger, slowThreshold time.Duration) gormlogger.Interface {
	return gormLogger{logger: logger.Named("gorm"), slowThreshold: slowThreshold}
}

// LogMode is a no-op: the zap level decides what is written.
func (l gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	l.logger.Infof(msg, args...)
}

func (l gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	l.logger.Warnf(msg, args...)
}

func (l gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	l.logger.Errorf(msg, args...)
}

func (l gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		query, rows := fc()
		l.logger.Errorw("query failed", "sql", query, "rows", rows, "elapsed", elapsed, "error", err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		query, rows := fc()
		l.logger.Warnw("slow query", "sql", query, "rows", rows, "elapsed", elapsed)
	case l.logger.Desugar().Core().Enabled(zapcore.DebugLevel):
		query, rows := fc()
		l.logger.Debugw("query", "sql", query, "rows", rows, "elapsed", elapsed)
	}
}
