package metricslog

import "errors"

var (
	// ErrAlreadyExists is returned when registering a name that is already taken.
	ErrAlreadyExists = errors.New("metric already exists")
	// ErrInvalidName is returned when registering an empty name or one
	// containing a line break.
	ErrInvalidName = errors.New("invalid metric name")
	// ErrUnknownType is returned when registering an unsupported MetricType.
	ErrUnknownType = errors.New("unknown metric type")

	// ErrSinkOpen wraps any failure to open a sink. Start returns it.
	ErrSinkOpen = errors.New("cannot open metrics sink")
	// ErrSinkClosed is returned when writing to a sink that is not open.
	ErrSinkClosed = errors.New("metrics sink is not open")

	// ErrNilSink is returned by NewCollector when no sink is given.
	ErrNilSink = errors.New("metrics sink is nil")
	// ErrInvalidInterval is returned by NewCollector for a non-positive interval.
	ErrInvalidInterval = errors.New("flush interval must be positive")
)
