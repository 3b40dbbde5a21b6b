package wirev1

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildQuoteUpdateFrame(ts uint64, symbol string, bidSize uint32, bidPrice int64, askSize uint32, askPrice int64) []byte {
	frame := make([]byte, typedHeaderBodyLen[typedQuoteUpdate])
	frame[0] = typedQuoteUpdate
	binary.LittleEndian.PutUint64(frame[1:9], ts)
	body := frame[9:]
	body[0] = 0
	copy(body[1:9], padSymbol(symbol))
	binary.LittleEndian.PutUint32(body[9:13], bidSize)
	binary.LittleEndian.PutUint64(body[13:21], uint64(bidPrice))
	binary.LittleEndian.PutUint32(body[21:25], askSize)
	binary.LittleEndian.PutUint64(body[25:33], uint64(askPrice))
	return frame
}

func TestTypedHeaderDecoder_QuoteUpdate(t *testing.T) {
	frame := buildQuoteUpdateFrame(42, "MSFT", 500, 3000000, 600, 3000500)
	d := NewTypedHeaderDecoder(frame)

	rec, err := d.ParseNext()
	require.NoError(t, err)
	require.Equal(t, RecordQuoteUpdate, rec.Type)
	require.Equal(t, uint64(42), rec.Timestamp)
	require.Equal(t, "MSFT", rec.QuoteUpdate.Symbol)
	require.Equal(t, uint32(500), rec.QuoteUpdate.BidSize)
	require.Equal(t, int64(3000000), rec.QuoteUpdate.BidPrice)
	require.Equal(t, uint32(600), rec.QuoteUpdate.AskSize)
	require.Equal(t, int64(3000500), rec.QuoteUpdate.AskPrice)
	require.False(t, d.HasMore())
}

func TestTypedHeaderDecoder_PriceLevelUpdateSideBit(t *testing.T) {
	frame := make([]byte, typedHeaderBodyLen[typedPriceLevelUpdate])
	frame[0] = typedPriceLevelUpdate
	binary.LittleEndian.PutUint64(frame[1:9], 7)
	body := frame[9:]
	body[0] = 0x1 // ask side
	copy(body[1:9], padSymbol("AAPL"))
	binary.LittleEndian.PutUint32(body[9:13], 300)
	binary.LittleEndian.PutUint64(body[13:21], 1500000)
	binary.LittleEndian.PutUint32(body[21:25], 99)

	d := NewTypedHeaderDecoder(frame)
	rec, err := d.ParseNext()
	require.NoError(t, err)
	require.Equal(t, RecordPriceLevelUpdate, rec.Type)
	require.Equal(t, SideSell, rec.PriceLevelUpdate.BidSide())
	require.Equal(t, uint32(99), rec.PriceLevelUpdate.UpdateID)
}

func TestTypedHeaderDecoder_Truncated(t *testing.T) {
	frame := buildQuoteUpdateFrame(1, "AAPL", 1, 1, 1, 1)
	d := NewTypedHeaderDecoder(frame[:len(frame)-3])
	_, err := d.ParseNext()
	require.ErrorIs(t, err, ErrTruncated)
	require.Equal(t, 0, d.Position())
}

func TestTypedHeaderDecoder_TruncatedHeaderOnly(t *testing.T) {
	d := NewTypedHeaderDecoder([]byte{typedQuoteUpdate, 1, 2, 3})
	_, err := d.ParseNext()
	require.ErrorIs(t, err, ErrTruncated)
}

func TestTypedHeaderDecoder_UnknownType(t *testing.T) {
	frame := make([]byte, 9)
	frame[0] = 0x99
	binary.LittleEndian.PutUint64(frame[1:9], 5)

	d := NewTypedHeaderDecoder(frame)
	_, err := d.ParseNext()
	require.ErrorIs(t, err, ErrUnknownType)
	require.Equal(t, 9, d.Position())
}

func TestTypedHeaderDecoder_MultipleRecords(t *testing.T) {
	f1 := buildQuoteUpdateFrame(1, "AAPL", 10, 100, 10, 101)
	f2 := buildQuoteUpdateFrame(2, "MSFT", 20, 200, 20, 201)
	buf := append(append([]byte{}, f1...), f2...)

	d := NewTypedHeaderDecoder(buf)
	rec1, err := d.ParseNext()
	require.NoError(t, err)
	require.Equal(t, "AAPL", rec1.QuoteUpdate.Symbol)

	rec2, err := d.ParseNext()
	require.NoError(t, err)
	require.Equal(t, "MSFT", rec2.QuoteUpdate.Symbol)
	require.False(t, d.HasMore())
}
