package gormqs

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger routes gorm's logging into the request's zerolog logger.
type Logger struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

var _ gormlogger.Interface = Logger{}

// NewLogger returns a Logger reporting warnings, errors and queries slower than 200ms.
func NewLogger() Logger {
	return Logger{Level: gormlogger.Warn, SlowThreshold: 200 * time.Millisecond}
}

func (l Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	l.Level = level
	return l
}

func (l Logger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.Level >= gormlogger.Info {
		log.Ctx(ctx).Info().Msgf(msg, args...)
	}
}

func (l Logger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.Level >= gormlogger.Warn {
		log.Ctx(ctx).Warn().Msgf(msg, args...)
	}
}

func (l Logger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.Level >= gormlogger.Error {
		log.Ctx(ctx).Error().Msgf(msg, args...)
	}
}

func (l Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	var event *zerolog.Event
	switch {
	case err != nil && l.Level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		event = log.Ctx(ctx).Error().Err(err)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.Level >= gormlogger.Warn:
		event = log.Ctx(ctx).Warn().Bool("slow", true)
	case l.Level >= gormlogger.Info:
		event = log.Ctx(ctx).Debug()
	default:
		return
	}
	sql, rows := fc()
	event.Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
}
