package metricslog

import "go.uber.org/zap"

// LoggerSink emits every line as an Info entry of a zap logger, under the
// "line" field. Useful when metrics should end up in the application log
// rather than in a file of their own.
type LoggerSink struct {
	logger *zap.Logger
	msg    string
}

// NewLoggerSink returns a sink logging through l with message "metrics".
func NewLoggerSink(l *zap.Logger) *LoggerSink {
	return &LoggerSink{logger: l, msg: "metrics"}
}

// Open does nothing.
func (s *LoggerSink) Open() error { return nil }

// WriteLine logs line at Info level. It never fails.
func (s *LoggerSink) WriteLine(line string) error {
	s.logger.Info(s.msg, zap.String("line", line))
	return nil
}

// Close syncs the logger. Sync errors are ignored: they are routinely
// returned for terminals and pipes.
func (s *LoggerSink) Close() error {
	_ = s.logger.Sync()
	return nil
}
