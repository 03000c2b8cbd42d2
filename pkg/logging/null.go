package logging

import "context"

// NullLogger drops every entry. Components fall back to it when no logger is given.
type NullLogger struct{}

var _ Logger = (*NullLogger)(nil)

func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (*NullLogger) Debug(context.Context, string, Fields) {}

func (*NullLogger) Info(context.Context, string, Fields) {}

func (*NullLogger) Warn(context.Context, string, Fields) {}

func (*NullLogger) Error(context.Context, string, error, Fields) {}

func (l *NullLogger) WithFields(Fields) Logger {
	return l
}

func (*NullLogger) Close() error {
	return nil
}
