package wirev1

import "encoding/binary"

// Length-prefixed (big-endian) message type bytes, per the resolved wire
// layout in the decoder's design notes.
const (
	typeSystemEvent         = 'S'
	typeStockDirectory      = 'R'
	typeAddOrder             = 'A'
	typeAddOrderAttributed  = 'F'
	typeExecuted             = 'E'
	typeExecutedWithPrice   = 'C'
	typeCancel               = 'X'
	typeDelete               = 'D'
	typeReplace              = 'U'
	typeTrade                = 'P'
)

// lengthPrefixedCommonLen is the size, in bytes, of the common prefix every
// length-prefixed record carries after its 1-byte type: stock_locate:u16 |
// tracking_number:u16 | timestamp:u48.
const lengthPrefixedCommonLen = 10

// lengthPrefixedBodyLen maps a type byte to its total payload length
// (type byte + common prefix + type-specific fields), matching spec.md's
// per-record byte table.
var lengthPrefixedBodyLen = map[byte]int{
	typeSystemEvent:        12,
	typeStockDirectory:     39,
	typeAddOrder:           36,
	typeAddOrderAttributed: 40,
	typeExecuted:           31,
	typeExecutedWithPrice:  36,
	typeCancel:             23,
	typeDelete:             19,
	typeReplace:            35,
	typeTrade:              44,
}

// LengthPrefixedDecoder decodes a big-endian, length-prefixed feed (ITCH
// 5.0-shaped): each frame is a 2-byte big-endian length (counting the type
// byte and payload, not the 2 length bytes themselves) followed by a
// 1-byte type and the type's fixed-size payload.
type LengthPrefixedDecoder struct {
	buf []byte
	pos int
}

// NewLengthPrefixedDecoder wraps buf. The decoder does not copy buf; callers
// must not mutate the slice while records remain undecoded.
func NewLengthPrefixedDecoder(buf []byte) *LengthPrefixedDecoder {
	return &LengthPrefixedDecoder{buf: buf}
}

// Reset rebinds the decoder to a new buffer and resets its cursor to zero.
func (d *LengthPrefixedDecoder) Reset(buf []byte) {
	d.buf = buf
	d.pos = 0
}

// Position returns the current cursor offset into the underlying buffer.
func (d *LengthPrefixedDecoder) Position() int { return d.pos }

// HasMore reports whether any bytes remain to attempt a decode.
func (d *LengthPrefixedDecoder) HasMore() bool { return d.pos < len(d.buf) }

// ParseNext decodes the frame at the current cursor. On ErrTruncated the
// cursor is left unchanged so the caller can re-present the same region
// once more bytes arrive. On any other error the cursor advances past the
// offending frame (or, if even the 2-byte length prefix is unavailable,
// ParseNext returns ErrTruncated without advancing).
func (d *LengthPrefixedDecoder) ParseNext() (Record, error) {
	if len(d.buf)-d.pos < 2 {
		return Record{}, ErrTruncated
	}
	frameLen := int(binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2]))
	frameStart := d.pos + 2

	if len(d.buf)-frameStart < frameLen {
		return Record{}, ErrTruncated
	}
	if frameLen < 1 {
		d.pos = frameStart + frameLen
		return Record{}, &MalformedFrameError{Declared: frameLen, Required: 1}
	}

	frame := d.buf[frameStart : frameStart+frameLen]
	typ := frame[0]

	want, known := lengthPrefixedBodyLen[typ]
	if !known {
		d.pos = frameStart + frameLen
		return Record{}, &UnknownTypeError{Type: typ}
	}
	if frameLen != want {
		d.pos = frameStart + frameLen
		return Record{}, &MalformedFrameError{Type: typ, Declared: frameLen, Required: want}
	}

	rec, err := decodeLengthPrefixedBody(typ, frame)
	d.pos = frameStart + frameLen
	return rec, err
}

func decodeLengthPrefixedBody(typ byte, frame []byte) (Record, error) {
	stockLocate := binary.BigEndian.Uint16(frame[1:3])
	trackingNumber := binary.BigEndian.Uint16(frame[3:5])
	timestamp := read48(frame[5:11])
	body := frame[11:]

	rec := Record{Timestamp: timestamp}

	switch typ {
	case typeSystemEvent:
		rec.Type = RecordSystemEvent
		rec.SystemEvent = SystemEvent{
			StockLocate:    stockLocate,
			TrackingNumber: trackingNumber,
			EventCode:      body[0],
		}

	case typeStockDirectory:
		rec.Type = RecordStockDirectory
		rec.StockDirectory = StockDirectory{
			StockLocate:            stockLocate,
			TrackingNumber:         trackingNumber,
			Symbol:                 decodeSymbol(body[0:8]),
			MarketCategory:         body[8],
			FinancialStatus:        body[9],
			RoundLotSize:           binary.BigEndian.Uint32(body[10:14]),
			RoundLotsOnly:          body[14],
			IssueClassification:    body[15],
			IssueSubType:           [2]byte{body[16], body[17]},
			Authenticity:           body[18],
			ShortSaleThreshold:     body[19],
			IPOFlag:                body[20],
			LULDReferencePriceTier: body[21],
			ETPFlag:                body[22],
			ETPLeverageFactor:      binary.BigEndian.Uint32(body[23:27]),
			InverseIndicator:       body[27],
		}

	case typeAddOrder, typeAddOrderAttributed:
		orderRef := binary.BigEndian.Uint64(body[0:8])
		side, err := decodeSide(body[8])
		if err != nil {
			return Record{}, err
		}
		shares := binary.BigEndian.Uint32(body[9:13])
		symbol := decodeSymbol(body[13:21])
		price := int64(binary.BigEndian.Uint32(body[21:25]))

		ao := AddOrder{
			StockLocate:    stockLocate,
			TrackingNumber: trackingNumber,
			OrderRefNum:    orderRef,
			Side:           side,
			Shares:         shares,
			Symbol:         symbol,
			Price:          price,
		}
		if typ == typeAddOrderAttributed {
			rec.Type = RecordAddOrderAttributed
			ao.Attributed = true
			copy(ao.Attribution[:], body[25:29])
		} else {
			rec.Type = RecordAddOrder
		}
		rec.AddOrder = ao

	case typeExecuted:
		rec.Type = RecordExecuted
		rec.Executed = Executed{
			StockLocate:    stockLocate,
			TrackingNumber: trackingNumber,
			OrderRefNum:    binary.BigEndian.Uint64(body[0:8]),
			ExecutedShares: binary.BigEndian.Uint32(body[8:12]),
			MatchNumber:    binary.BigEndian.Uint64(body[12:20]),
		}

	case typeExecutedWithPrice:
		rec.Type = RecordExecutedWithPrice
		rec.ExecutedWithPrice = ExecutedWithPrice{
			Executed: Executed{
				StockLocate:    stockLocate,
				TrackingNumber: trackingNumber,
				OrderRefNum:    binary.BigEndian.Uint64(body[0:8]),
				ExecutedShares: binary.BigEndian.Uint32(body[8:12]),
				MatchNumber:    binary.BigEndian.Uint64(body[12:20]),
			},
			Printable:      body[20],
			ExecutionPrice: int64(binary.BigEndian.Uint32(body[21:25])),
		}

	case typeCancel:
		rec.Type = RecordCancel
		rec.Cancel = Cancel{
			StockLocate:     stockLocate,
			TrackingNumber:  trackingNumber,
			OrderRefNum:     binary.BigEndian.Uint64(body[0:8]),
			CancelledShares: binary.BigEndian.Uint32(body[8:12]),
		}

	case typeDelete:
		rec.Type = RecordDelete
		rec.Delete = Delete{
			StockLocate:    stockLocate,
			TrackingNumber: trackingNumber,
			OrderRefNum:    binary.BigEndian.Uint64(body[0:8]),
		}

	case typeReplace:
		rec.Type = RecordReplace
		rec.Replace = Replace{
			StockLocate:         stockLocate,
			TrackingNumber:      trackingNumber,
			OriginalOrderRefNum: binary.BigEndian.Uint64(body[0:8]),
			NewOrderRefNum:      binary.BigEndian.Uint64(body[8:16]),
			Shares:              binary.BigEndian.Uint32(body[16:20]),
			Price:               int64(binary.BigEndian.Uint32(body[20:24])),
		}

	case typeTrade:
		side, err := decodeSide(body[8])
		if err != nil {
			return Record{}, err
		}
		rec.Type = RecordTrade
		rec.Trade = Trade{
			StockLocate:    stockLocate,
			TrackingNumber: trackingNumber,
			OrderRefNum:    binary.BigEndian.Uint64(body[0:8]),
			Side:           side,
			Shares:         binary.BigEndian.Uint32(body[9:13]),
			Symbol:         decodeSymbol(body[13:21]),
			Price:          int64(binary.BigEndian.Uint32(body[21:25])),
			MatchNumber:    binary.BigEndian.Uint64(body[25:33]),
		}

	default:
		return Record{}, &UnknownTypeError{Type: typ}
	}

	return rec, nil
}

// decodeSide matches spec.md's strict {'B','S'} requirement; any other byte
// is MalformedFrame rather than an inferred default.
func decodeSide(b byte) (Side, error) {
	switch b {
	case 'B':
		return SideBuy, nil
	case 'S':
		return SideSell, nil
	default:
		return 0, &MalformedFrameError{Type: b}
	}
}

// read48 widens a 6-byte big-endian value to uint64.
func read48(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
