package pipeline

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	feedsourcev1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/feedsource/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange/services/feed-engine/pkg/logger"
)

// fakeSource replays a fixed list of pre-built message payloads, then
// blocks until ctx is cancelled.
type fakeSource struct {
	mu       sync.Mutex
	messages [][]byte
	next     int
}

func (f *fakeSource) ReadMessage(ctx context.Context) (feedsourcev1.Message, error) {
	f.mu.Lock()
	if f.next < len(f.messages) {
		msg := f.messages[f.next]
		f.next++
		f.mu.Unlock()
		return feedsourcev1.Message{Offset: int64(f.next), Value: msg}, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return feedsourcev1.Message{}, ctx.Err()
}

func (f *fakeSource) CommitOffset(ctx context.Context, offset int64) error { return nil }
func (f *fakeSource) Close() error                                        { return nil }

func put48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

func padSymbol(s string) []byte {
	b := make([]byte, 8)
	copy(b, s)
	for i := len(s); i < 8; i++ {
		b[i] = ' '
	}
	return b
}

func buildAddOrderFrame(orderRef uint64, side byte, shares uint32, stock string, price uint32) []byte {
	body := make([]byte, 36)
	body[0] = 'A'
	binary.BigEndian.PutUint16(body[1:3], 1)
	binary.BigEndian.PutUint16(body[3:5], 1)
	put48(body[5:11], 1)
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

func buildDeleteFrame(orderRef uint64) []byte {
	body := make([]byte, 19)
	body[0] = 'D'
	binary.BigEndian.PutUint16(body[1:3], 1)
	binary.BigEndian.PutUint16(body[3:5], 1)
	put48(body[5:11], 2)
	binary.BigEndian.PutUint64(body[11:19], orderRef)

	frame := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(body)))
	copy(frame[2:], body)
	return frame
}

func TestEngine_AddThenDeleteAppliesToBook(t *testing.T) {
	log, err := logger.New(logger.Options{OutputPaths: []string{"/dev/null"}})
	require.NoError(t, err)

	addFrame := buildAddOrderFrame(12345, 'B', 100, "AAPL", 1500000)
	delFrame := buildDeleteFrame(12345)
	source := &fakeSource{messages: [][]byte{addFrame, delFrame}}

	opts := DefaultOptions()
	opts.RingCapacity = 16
	opts.SnapshotInterval = time.Hour
	opts.TickFlushInterval = time.Hour

	engine := New(source, FeedLengthPrefixed, nil, nil, log, opts)

	ctx, cancel := context.WithCancel(context.Background())
	engine.Start(ctx)

	require.Eventually(t, func() bool {
		return engine.MessageCount() >= 2
	}, 2*time.Second, time.Millisecond)

	book := engine.Books().GetOrCreate("AAPL")
	require.Equal(t, 0, book.OrderCount())
	require.Nil(t, book.BestBid())

	cancel()
	engine.Stop()
}

func TestEngine_AddOrderReachesCorrectSideAndPrice(t *testing.T) {
	log, err := logger.New(logger.Options{OutputPaths: []string{"/dev/null"}})
	require.NoError(t, err)

	addFrame := buildAddOrderFrame(1, 'B', 100, "AAPL", 1500000)
	source := &fakeSource{messages: [][]byte{addFrame}}

	opts := DefaultOptions()
	opts.RingCapacity = 16
	opts.SnapshotInterval = time.Hour
	opts.TickFlushInterval = time.Hour

	engine := New(source, FeedLengthPrefixed, nil, nil, log, opts)

	ctx, cancel := context.WithCancel(context.Background())
	engine.Start(ctx)

	require.Eventually(t, func() bool {
		return engine.MessageCount() >= 1
	}, 2*time.Second, time.Millisecond)

	book := engine.Books().GetOrCreate("AAPL")
	best := book.BestBid()
	require.NotNil(t, best)
	require.Equal(t, orderbookv1.PriceTicks(1500000), best.Price)
	require.Equal(t, uint64(100), best.Size)

	cancel()
	engine.Stop()
}
