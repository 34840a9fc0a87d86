package core

// Logger interface for sampling and prefilter logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything written to it
type NopLogger struct{}

func (NopLogger) Printf(format string, args ...interface{}) {}
