// Package tickstorev1 declares the persistence-format tick record (spec §6)
// and the interface for appending/replaying it, independent of which
// storage backend implements it.
package tickstorev1

// TickRecord is the fixed-layout 48-byte persisted tick: ts:u64 |
// symbol:[8]byte | price:i64 | size:u64 | side:u8 | flags:u8 | padding.
// Flags bit 0 = trade, bit 1 = quote. Side 0 = bid/buy, 1 = ask/sell. Host
// endian on disk — an explicit non-portable choice, since the tick file is
// not an exchange wire format.
//
// The named fields above sum to 34 bytes; the original tick_recorder.hpp
// struct this is grounded on pads that to 40 with a uint16, which is
// narrower than this spec's stated 48-byte record. Padding is widened to
// 14 bytes here to match the stated size exactly (see DESIGN.md).
type TickRecord struct {
	Timestamp uint64
	Symbol    [8]byte
	Price     int64
	Size      uint64
	Side      uint8
	Flags     uint8
	_         [14]byte
}

const (
	// FlagTrade marks a TickRecord derived from a trade/execution.
	FlagTrade = 1 << 0
	// FlagQuote marks a TickRecord derived from a quote/book update.
	FlagQuote = 1 << 1
)

// Store appends tick records for replay and reads them back in order.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=tickstorev1_mock
type Store interface {
	Append(records []TickRecord) error
	ReadAll(symbol string) ([]TickRecord, error)
	Close() error
}
