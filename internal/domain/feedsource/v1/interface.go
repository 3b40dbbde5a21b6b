// Package feedsourcev1 declares the interface the pipeline uses to pull raw
// wire bytes off a transport, independent of which transport backs it.
package feedsourcev1

import "context"

// Message is one raw payload read from the feed, along with its offset so
// the caller can checkpoint consumption.
type Message struct {
	Offset int64
	Value  []byte
}

// Source reads raw market-data payload bytes — the decoder's required
// input (spec §6) — off of whatever transport backs it.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=feedsourcev1_mock
type Source interface {
	// ReadMessage blocks until the next message is available or ctx is
	// cancelled.
	ReadMessage(ctx context.Context) (Message, error)

	// CommitOffset checkpoints consumption up to and including offset.
	CommitOffset(ctx context.Context, offset int64) error

	// Close releases the underlying transport connection.
	Close() error
}
