package metricslog

// Sink receives one line of text per flush interval.
//
// Open is called by Collector.Start, Close by Collector.Stop. WriteLine is
// only ever called from the collector's flush goroutine, so implementations
// need no locking of their own for the collector's sake. WriteLine appends
// the line terminator itself.
type Sink interface {
	Open() error
	WriteLine(line string) error
	Close() error
}
