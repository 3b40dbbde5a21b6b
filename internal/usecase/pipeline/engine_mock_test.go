package pipeline

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	feedsourcev1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/feedsource/v1"
	feedsourcev1mock "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/feedsource/v1/mock"
	"github.com/muhammadchandra19/exchange/services/feed-engine/pkg/logger"
	"github.com/stretchr/testify/require"
)

// TestEngine_CommitsOffsetAfterEachMessage uses a gomock Source double to
// assert the producer commits exactly the offset of the message it just
// decoded, in order, and blocks on ReadMessage once the scripted messages
// are exhausted.
func TestEngine_CommitsOffsetAfterEachMessage(t *testing.T) {
	log, err := logger.New(logger.Options{OutputPaths: []string{"/dev/null"}})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	source := feedsourcev1mock.NewMockSource(ctrl)

	addFrame := buildAddOrderFrame(12345, 'B', 100, "AAPL", 1500000)

	blockCtx, unblock := context.WithCancel(context.Background())
	gomock.InOrder(
		source.EXPECT().ReadMessage(gomock.Any()).Return(feedsourcev1.Message{Offset: 1, Value: addFrame}, nil),
		source.EXPECT().ReadMessage(gomock.Any()).DoAndReturn(func(ctx context.Context) (feedsourcev1.Message, error) {
			<-blockCtx.Done()
			return feedsourcev1.Message{}, ctx.Err()
		}).AnyTimes(),
	)
	source.EXPECT().CommitOffset(gomock.Any(), int64(1)).Return(nil)

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

	cancel()
	unblock()
	engine.Stop()
}
