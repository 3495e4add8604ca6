package log

// NoneLogger is a no-op implementation of Logger. Useful in tests and for
// callers that opt out of logging entirely.
type NoneLogger struct{}

// Debug drops the log entry.
func (l *NoneLogger) Debug(args ...any) {}

// Debugf drops the log entry.
func (l *NoneLogger) Debugf(format string, args ...any) {}

// Info drops the log entry.
func (l *NoneLogger) Info(args ...any) {}

// Infof drops the log entry.
func (l *NoneLogger) Infof(format string, args ...any) {}

// Warn drops the log entry.
func (l *NoneLogger) Warn(args ...any) {}

// Warnf drops the log entry.
func (l *NoneLogger) Warnf(format string, args ...any) {}

// Error drops the log entry.
func (l *NoneLogger) Error(args ...any) {}

// Errorf drops the log entry.
func (l *NoneLogger) Errorf(format string, args ...any) {}

// Fatal drops the log entry.
func (l *NoneLogger) Fatal(args ...any) {}

// Fatalf drops the log entry.
func (l *NoneLogger) Fatalf(format string, args ...any) {}

// WithFields returns the same no-op logger.
//
//nolint:ireturn
func (l *NoneLogger) WithFields(fields ...any) Logger {
	return l
}

// Sync is a no-op and always returns nil.
func (l *NoneLogger) Sync() error { return nil }
