package wirev1

import "encoding/binary"

// Typed-header (little-endian) message type bytes.
const (
	typedSystemEvent        = 0x53 // 'S'
	typedSecurityDirectory  = 0x44 // 'D'
	typedTradingStatus      = 0x48 // 'H'
	typedQuoteUpdate        = 0x51 // 'Q'
	typedTradeReport        = 0x54 // 'T'
	typedPriceLevelUpdate   = 0x38 // '8'
)

// typedHeaderLen is the size, in bytes, of the common header every
// typed-header record carries: type:u8 | timestamp:u64.
const typedHeaderLen = 9

// typedHeaderBodyLen maps a type byte to its total record length (header +
// type-specific fields).
var typedHeaderBodyLen = map[byte]int{
	typedSystemEvent:       14,
	typedSecurityDirectory: 31,
	typedTradingStatus:     22,
	typedQuoteUpdate:       42,
	typedTradeReport:       38,
	typedPriceLevelUpdate:  34,
}

// TypedHeaderDecoder decodes a little-endian, typed-header feed (IEX
// TOPS-shaped): each record opens with a 1-byte type and 8-byte timestamp,
// followed by the type's fixed-size payload. There is no outer length
// prefix — frame length is implied entirely by the type byte.
type TypedHeaderDecoder struct {
	buf []byte
	pos int
}

// NewTypedHeaderDecoder wraps buf. The decoder does not copy buf; callers
// must not mutate the slice while records remain undecoded.
func NewTypedHeaderDecoder(buf []byte) *TypedHeaderDecoder {
	return &TypedHeaderDecoder{buf: buf}
}

// Reset rebinds the decoder to a new buffer and resets its cursor to zero.
func (d *TypedHeaderDecoder) Reset(buf []byte) {
	d.buf = buf
	d.pos = 0
}

// Position returns the current cursor offset into the underlying buffer.
func (d *TypedHeaderDecoder) Position() int { return d.pos }

// HasMore reports whether any bytes remain to attempt a decode.
func (d *TypedHeaderDecoder) HasMore() bool { return d.pos < len(d.buf) }

// ParseNext decodes the record at the current cursor. On ErrTruncated the
// cursor is left unchanged. On UnknownType the cursor advances past just
// the 9-byte header, since without a known type there is no way to know
// the record's total length. On MalformedFrame the cursor advances past
// the full expected record length.
func (d *TypedHeaderDecoder) ParseNext() (Record, error) {
	if len(d.buf)-d.pos < typedHeaderLen {
		return Record{}, ErrTruncated
	}
	typ := d.buf[d.pos]
	timestamp := binary.LittleEndian.Uint64(d.buf[d.pos+1 : d.pos+9])

	want, known := typedHeaderBodyLen[typ]
	if !known {
		d.pos += typedHeaderLen
		return Record{}, &UnknownTypeError{Type: typ}
	}
	if len(d.buf)-d.pos < want {
		return Record{}, ErrTruncated
	}

	rec, err := decodeTypedHeaderBody(typ, timestamp, d.buf[d.pos:d.pos+want])
	d.pos += want
	return rec, err
}

func decodeTypedHeaderBody(typ byte, timestamp uint64, frame []byte) (Record, error) {
	body := frame[typedHeaderLen:]
	rec := Record{Timestamp: timestamp}

	switch typ {
	case typedSystemEvent:
		rec.Type = RecordSystemEvent
		rec.SystemEvent = SystemEvent{EventCode: body[0]}

	case typedSecurityDirectory:
		rec.Type = RecordSecurityDirectory
		rec.SecurityDirectory = SecurityDirectory{
			Flags:            body[0],
			Symbol:           decodeSymbol(body[1:9]),
			RoundLot:         binary.LittleEndian.Uint32(body[9:13]),
			AdjustedPOCClose: int64(binary.LittleEndian.Uint64(body[13:21])),
			LULDTier:         body[21],
		}

	case typedTradingStatus:
		rec.Type = RecordTradingStatus
		ts := TradingStatus{
			Status: body[0],
			Symbol: decodeSymbol(body[1:9]),
		}
		copy(ts.Reason[:], body[9:13])
		rec.TradingStatus = ts

	case typedQuoteUpdate:
		rec.Type = RecordQuoteUpdate
		rec.QuoteUpdate = QuoteUpdate{
			Flags:    body[0],
			Symbol:   decodeSymbol(body[1:9]),
			BidSize:  binary.LittleEndian.Uint32(body[9:13]),
			BidPrice: int64(binary.LittleEndian.Uint64(body[13:21])),
			AskSize:  binary.LittleEndian.Uint32(body[21:25]),
			AskPrice: int64(binary.LittleEndian.Uint64(body[25:33])),
		}

	case typedTradeReport:
		rec.Type = RecordTradeReport
		rec.TradeReport = TradeReport{
			Flags:   body[0],
			Symbol:  decodeSymbol(body[1:9]),
			Size:    binary.LittleEndian.Uint32(body[9:13]),
			Price:   int64(binary.LittleEndian.Uint64(body[13:21])),
			TradeID: binary.LittleEndian.Uint64(body[21:29]),
		}

	case typedPriceLevelUpdate:
		rec.Type = RecordPriceLevelUpdate
		rec.PriceLevelUpdate = PriceLevelUpdate{
			Flags:    body[0],
			Symbol:   decodeSymbol(body[1:9]),
			Size:     binary.LittleEndian.Uint32(body[9:13]),
			Price:    int64(binary.LittleEndian.Uint64(body[13:21])),
			UpdateID: binary.LittleEndian.Uint32(body[21:25]),
		}

	default:
		return Record{}, &UnknownTypeError{Type: typ}
	}

	return rec, nil
}
