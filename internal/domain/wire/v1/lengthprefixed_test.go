package wirev1

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func put48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

// buildAddOrderFrame assembles a length-prefixed AddOrder ('A') frame per
// the resolved wire layout: 2-byte length + type + common10 + order_ref:u64
// + buy_sell:u8 + shares:u32 + stock:[8]byte + price:u32.
func buildAddOrderFrame(stockLocate, tracking uint16, ts uint64, orderRef uint64, side byte, shares uint32, stock string, price uint32) []byte {
	body := make([]byte, 36) // type(1) + common10(10) + order_ref(8) + side(1) + shares(4) + stock(8) + price(4)
	body[0] = typeAddOrder
	binary.BigEndian.PutUint16(body[1:3], stockLocate)
	binary.BigEndian.PutUint16(body[3:5], tracking)
	put48(body[5:11], ts)
	binary.BigEndian.PutUint64(body[11:19], orderRef)
	body[19] = side
	binary.BigEndian.PutUint32(body[20:24], shares)
	copy(body[24:32], padSymbol(stock))
	binary.BigEndian.PutUint32(body[32:36], price)

	frame := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(body)))
	copy(frame[2:], body)
	return frame
}

func padSymbol(s string) []byte {
	b := make([]byte, 8)
	copy(b, s)
	for i := len(s); i < 8; i++ {
		b[i] = ' '
	}
	return b
}

func TestLengthPrefixedDecoder_AddOrderScenario(t *testing.T) {
	// Scenario 6 from the spec: order_ref=12345, side='B', shares=100,
	// stock="AAPL", price=1500000 (price_to_double == 150.0, i.e. ticks
	// are 1e-4 currency units).
	frame := buildAddOrderFrame(7, 1, 123456789, 12345, 'B', 100, "AAPL", 1500000)
	require.Len(t, frame, 2+36)

	d := NewLengthPrefixedDecoder(frame)
	rec, err := d.ParseNext()
	require.NoError(t, err)
	require.Equal(t, RecordAddOrder, rec.Type)
	require.Equal(t, uint64(123456789), rec.Timestamp)
	require.Equal(t, uint64(12345), rec.AddOrder.OrderRefNum)
	require.Equal(t, SideBuy, rec.AddOrder.Side)
	require.Equal(t, uint32(100), rec.AddOrder.Shares)
	require.Equal(t, "AAPL", rec.AddOrder.Symbol)
	require.Equal(t, int64(1500000), rec.AddOrder.Price)
	require.False(t, d.HasMore())
}

func TestLengthPrefixedDecoder_Truncated(t *testing.T) {
	frame := buildAddOrderFrame(7, 1, 1, 1, 'B', 1, "AAPL", 1)
	d := NewLengthPrefixedDecoder(frame[:len(frame)-5])
	_, err := d.ParseNext()
	require.ErrorIs(t, err, ErrTruncated)
	require.Equal(t, 0, d.Position())
}

func TestLengthPrefixedDecoder_UnknownType(t *testing.T) {
	body := []byte{'Z', 0, 7, 0, 1, 0, 0, 0, 0, 0, 0}
	frame := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(body)))
	copy(frame[2:], body)

	d := NewLengthPrefixedDecoder(frame)
	_, err := d.ParseNext()
	require.ErrorIs(t, err, ErrUnknownType)
	require.Equal(t, len(frame), d.Position())
	require.False(t, d.HasMore())
}

func TestLengthPrefixedDecoder_MalformedSide(t *testing.T) {
	frame := buildAddOrderFrame(7, 1, 1, 1, 'Q', 1, "AAPL", 1)
	d := NewLengthPrefixedDecoder(frame)
	_, err := d.ParseNext()
	require.ErrorIs(t, err, ErrMalformedFrame)
	require.Equal(t, len(frame), d.Position())
}

func TestLengthPrefixedDecoder_MalformedDeclaredLength(t *testing.T) {
	body := make([]byte, 20) // AddOrder body must be 36
	body[0] = typeAddOrder
	frame := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(body)))
	copy(frame[2:], body)

	d := NewLengthPrefixedDecoder(frame)
	_, err := d.ParseNext()
	require.ErrorIs(t, err, ErrMalformedFrame)
}

func TestLengthPrefixedDecoder_MultipleFrames(t *testing.T) {
	f1 := buildAddOrderFrame(1, 1, 100, 1, 'B', 10, "MSFT", 3000000)
	f2 := buildAddOrderFrame(1, 1, 200, 2, 'S', 20, "MSFT", 3000500)
	buf := append(append([]byte{}, f1...), f2...)

	d := NewLengthPrefixedDecoder(buf)
	rec1, err := d.ParseNext()
	require.NoError(t, err)
	require.Equal(t, uint64(1), rec1.AddOrder.OrderRefNum)

	require.True(t, d.HasMore())
	rec2, err := d.ParseNext()
	require.NoError(t, err)
	require.Equal(t, uint64(2), rec2.AddOrder.OrderRefNum)
	require.False(t, d.HasMore())
}

func TestDecodeSymbol_TrimsPaddingPreservesInternalSpace(t *testing.T) {
	require.Equal(t, "AAPL", decodeSymbol([]byte("AAPL\x00\x00\x00\x00")))
	require.Equal(t, "AAPL", decodeSymbol([]byte("AAPL    ")))
	require.Equal(t, "A B", decodeSymbol([]byte("A B     ")))
}

func TestDecodeSymbol_ReplacesInvalidASCII(t *testing.T) {
	got := decodeSymbol([]byte{0xff, 'B', 'C', ' ', ' ', ' ', ' ', ' '})
	require.Equal(t, "�BC", got)
}
