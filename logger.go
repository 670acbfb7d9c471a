package metricslog

// Logger is the leveled logger used by Registry and Collector.
// *zap.SugaredLogger satisfies it, so a zap logger can be passed as
// WithLogger(zapLogger.Sugar()).
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

func newNoopLogger() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}
