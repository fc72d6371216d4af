package authgate

import (
	"github.com/sirupsen/logrus"
)

// Logger is a generic logging interface for the middleware.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NoopLogger is the default logger; it discards everything.
type NoopLogger struct{}

func (l *NoopLogger) Debugf(format string, args ...interface{}) {}
func (l *NoopLogger) Infof(format string, args ...interface{})  {}
func (l *NoopLogger) Warnf(format string, args ...interface{})  {}
func (l *NoopLogger) Errorf(format string, args ...interface{}) {}

// NewLogrusLogger returns a Logger adapter for logrus.FieldLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLoggerAdapter{l}
}

type logrusLoggerAdapter struct{ l logrus.FieldLogger }

func (a *logrusLoggerAdapter) Debugf(format string, args ...interface{}) { a.l.Debugf(format, args...) }
func (a *logrusLoggerAdapter) Infof(format string, args ...interface{})  { a.l.Infof(format, args...) }
func (a *logrusLoggerAdapter) Warnf(format string, args ...interface{})  { a.l.Warnf(format, args...) }
func (a *logrusLoggerAdapter) Errorf(format string, args ...interface{}) { a.l.Errorf(format, args...) }
