package dae

import "go.uber.org/zap"

// Logger returns l, or a no-op logger when l is nil.
func Logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
