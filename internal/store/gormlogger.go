package store

import (
	"context"
	"errors"
	"time"

	applog "github.com/fuel-streams/streams/pkg/logger"
	gormlogger "gorm.io/gorm/logger"
)

// slogGormLogger adapts gorm's logger.Interface onto the shared slog
// logger, grounded on the teacher's database.InstrumentedManager pattern
// (duration-annotated error logs) rather than gorm's default stdlib-log
// writer.
type slogGormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGORMLogger returns a gorm logger.Interface that writes through
// pkg/logger instead of gorm's default stdlib logger.
func NewGORMLogger() gormlogger.Interface {
	return &slogGormLogger{level: gormlogger.Warn, slowThreshold: 200 * time.Millisecond}
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		applog.L().InfoContext(ctx, msg, "args", args)
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		applog.L().WarnContext(ctx, msg, "args", args)
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		applog.L().ErrorContext(ctx, msg, "args", args)
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		applog.L().ErrorContext(ctx, "query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case elapsed > l.slowThreshold && l.slowThreshold != 0 && l.level >= gormlogger.Warn:
		applog.L().WarnContext(ctx, "slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= gormlogger.Info:
		applog.L().DebugContext(ctx, "query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
