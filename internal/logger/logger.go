package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	base *zap.SugaredLogger
	once sync.Once
)

// Init initializes the global structured logger.
func Init() {
	once.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		base = l.Sugar()
	})
}

// L returns the global logger instance.
func L() *zap.SugaredLogger {
	if base == nil {
		Init()
	}
	return base
}

// Info is a shorthand for L().Infow.
func Info(msg string, keysAndValues ...any) {
	L().Infow(msg, keysAndValues...)
}

// Warn is a shorthand for L().Warnw.
func Warn(msg string, keysAndValues ...any) {
	L().Warnw(msg, keysAndValues...)
}

// Error is a shorthand for L().Errorw.
func Error(msg string, keysAndValues ...any) {
	L().Errorw(msg, keysAndValues...)
}

// Debug is a shorthand for L().Debugw.
func Debug(msg string, keysAndValues ...any) {
	L().Debugw(msg, keysAndValues...)
}
