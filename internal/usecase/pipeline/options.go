package pipeline

import "time"

// Options configures an Engine's non-functional behaviour.
type Options struct {
	// RingCapacity is the SPSC ring's power-of-two slot count.
	RingCapacity int
	// SnapshotInterval is how often the consumer publishes a snapshot for
	// every symbol that has a book, independent of message traffic.
	SnapshotInterval time.Duration
	// TickFlushInterval is how often buffered TickRecords are flushed to
	// the tick store.
	TickFlushInterval time.Duration
	// TickFlushBatchSize additionally forces a flush once this many
	// TickRecords have buffered, regardless of TickFlushInterval.
	TickFlushBatchSize int
}

// DefaultOptions returns the engine's default operating parameters.
func DefaultOptions() Options {
	return Options{
		RingCapacity:       1024,
		SnapshotInterval:   1 * time.Second,
		TickFlushInterval:  5 * time.Second,
		TickFlushBatchSize: 256,
	}
}
