package linedescriptor

import (
	"sync"

	"go.uber.org/zap"
)

var (
	pkgLogger   *zap.Logger
	pkgLoggerMu sync.RWMutex
)

// Logger returns the package logger, a no-op until SetLogger is called.
func Logger() *zap.Logger {
	pkgLoggerMu.RLock()
	defer pkgLoggerMu.RUnlock()
	if pkgLogger == nil {
		return zap.NewNop()
	}
	return pkgLogger
}

// SetLogger installs a logger for the binding layer. Pass nil to silence it
// again.
func SetLogger(l *zap.Logger) {
	pkgLoggerMu.Lock()
	defer pkgLoggerMu.Unlock()
	pkgLogger = l
}
