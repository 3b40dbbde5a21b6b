// Package pipeline wires the decoder, SPSC ring, and book manager into the
// two-thread pipeline described in spec §5: a producer goroutine decodes
// raw bytes and pushes tagged records into the ring; a consumer goroutine
// drains the ring, applies records to the relevant book, and publishes
// snapshots.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	feedsourcev1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/feedsource/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/orderbook/v1"
	ringv1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/ring/v1"
	snapshotstorev1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/snapshotstore/v1"
	tickstorev1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/tickstore/v1"
	wirev1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/wire/v1"
	"github.com/muhammadchandra19/exchange/services/feed-engine/internal/usecase/bookmanager"
	"github.com/muhammadchandra19/exchange/services/feed-engine/pkg/logger"
)

// FeedKind selects which wire decoder the producer uses.
type FeedKind int

const (
	// FeedLengthPrefixed selects the big-endian, length-prefixed decoder
	// (ITCH 5.0-shaped).
	FeedLengthPrefixed FeedKind = iota
	// FeedTypedHeader selects the little-endian, typed-header decoder
	// (IEX TOPS-shaped).
	FeedTypedHeader
)

// Engine orchestrates the producer/consumer goroutines over one physical
// feed. Multiple symbols share one Engine's BookManager; a deployment
// reading several physical feeds runs one Engine per feed.
type Engine struct {
	source  feedsourcev1.Source
	feed    FeedKind
	books   *bookmanager.BookManager
	ring    *ringv1.Ring[wirev1.Record]
	snaps   snapshotstorev1.Store
	ticks   tickstorev1.Store
	logger  *logger.Logger
	options Options

	// orderSymbol maps an order_ref_num to the symbol it was added under,
	// since the length-prefixed feed's Cancel/Delete/Executed/Replace
	// records identify an order purely by ref num, not by symbol.
	// Populated on AddOrder, consulted and cleaned up on everything that
	// removes an order from the book.
	orderSymbol map[uint64]string

	// messageCount/unknownCount/malformedCount are written by the producer
	// or consumer goroutine and read from arbitrary caller goroutines via
	// MessageCount/UnknownTypeCount/MalformedFrameCount, so they need
	// atomic access the same way the ring's head/tail cursors do.
	messageCount   atomic.Uint64
	unknownCount   atomic.Uint64
	malformedCount atomic.Uint64

	tickBuf []tickstorev1.TickRecord

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New constructs an Engine. snaps and ticks may be nil to disable
// snapshot publishing / tick persistence respectively (useful for tests).
func New(source feedsourcev1.Source, feed FeedKind, snaps snapshotstorev1.Store, ticks tickstorev1.Store, log *logger.Logger, opts Options) *Engine {
	return &Engine{
		source:      source,
		feed:        feed,
		books:       bookmanager.New(),
		ring:        ringv1.New[wirev1.Record](opts.RingCapacity),
		snaps:       snaps,
		ticks:       ticks,
		logger:      log,
		options:     opts,
		orderSymbol: make(map[uint64]string),
	}
}

// Books exposes the engine's BookManager, e.g. for a snapshot reader
// living on the same thread.
func (e *Engine) Books() *bookmanager.BookManager {
	return e.books
}

// Start launches the producer and consumer goroutines. Start returns
// immediately; call Stop (or cancel ctx) to shut down.
func (e *Engine) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(2)
	go e.runProducer(runCtx)
	go e.runConsumer(runCtx)
}

// Stop signals both goroutines to exit and blocks until they do.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *Engine) runProducer(ctx context.Context) {
	defer e.wg.Done()

	var lp *wirev1.LengthPrefixedDecoder
	var th *wirev1.TypedHeaderDecoder

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := e.source.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logger.Error(err, logger.NewField("operation", "ReadMessage"))
			continue
		}

		switch e.feed {
		case FeedLengthPrefixed:
			if lp == nil {
				lp = wirev1.NewLengthPrefixedDecoder(msg.Value)
			} else {
				lp.Reset(msg.Value)
			}
			e.drainDecoder(ctx, lp)
		case FeedTypedHeader:
			if th == nil {
				th = wirev1.NewTypedHeaderDecoder(msg.Value)
			} else {
				th.Reset(msg.Value)
			}
			e.drainDecoder(ctx, th)
		}

		_ = e.source.CommitOffset(ctx, msg.Offset)
	}
}

// frameDecoder is satisfied by both wire decoders; it lets drainDecoder
// treat them identically.
type frameDecoder interface {
	HasMore() bool
	ParseNext() (wirev1.Record, error)
}

func (e *Engine) drainDecoder(ctx context.Context, d frameDecoder) {
	for d.HasMore() {
		rec, err := d.ParseNext()
		if err != nil {
			switch {
			case err == wirev1.ErrTruncated:
				// Remaining bytes in this message don't form a complete
				// frame. Each feed message is expected to be
				// self-contained, so the remainder is dropped.
				return
			default:
				var unknownErr *wirev1.UnknownTypeError
				var malformedErr *wirev1.MalformedFrameError
				switch {
				case asUnknownType(err, &unknownErr):
					e.unknownCount.Add(1)
				case asMalformedFrame(err, &malformedErr):
					e.malformedCount.Add(1)
				}
				e.logger.Warn("decode error", logger.NewField("error", err.Error()))
				continue
			}
		}

		for !e.ring.TryPush(rec) {
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}
}

func asUnknownType(err error, target **wirev1.UnknownTypeError) bool {
	if t, ok := err.(*wirev1.UnknownTypeError); ok {
		*target = t
		return true
	}
	return false
}

func asMalformedFrame(err error, target **wirev1.MalformedFrameError) bool {
	if t, ok := err.(*wirev1.MalformedFrameError); ok {
		*target = t
		return true
	}
	return false
}

func (e *Engine) runConsumer(ctx context.Context) {
	defer e.wg.Done()

	snapTicker := time.NewTicker(e.options.SnapshotInterval)
	defer snapTicker.Stop()
	flushTicker := time.NewTicker(e.options.TickFlushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.flushTicks()
			return
		case <-snapTicker.C:
			e.publishAllSnapshots(ctx)
		case <-flushTicker.C:
			e.flushTicks()
		default:
			if rec, ok := e.ring.TryPop(); ok {
				e.apply(rec)
				e.messageCount.Add(1)
			}
		}
	}
}

func (e *Engine) apply(rec wirev1.Record) {
	switch rec.Type {
	case wirev1.RecordAddOrder, wirev1.RecordAddOrderAttributed:
		a := rec.AddOrder
		e.orderSymbol[a.OrderRefNum] = a.Symbol
		book := e.books.GetOrCreate(a.Symbol)
		side := toBookSide(a.Side)
		if err := book.AddOrder(orderbookv1.OrderID(a.OrderRefNum), side, orderbookv1.PriceTicks(a.Price), uint64(a.Shares), rec.Timestamp); err != nil {
			e.logger.Warn("add_order rejected", logger.NewField("order_ref", a.OrderRefNum), logger.NewField("error", err.Error()))
			return
		}
		e.bufferTick(a.Symbol, a.Price, uint64(a.Shares), side, tickstorev1.FlagQuote, rec.Timestamp)

	case wirev1.RecordExecuted:
		x := rec.Executed
		e.applyExecute(x.OrderRefNum, uint64(x.ExecutedShares), rec.Timestamp)

	case wirev1.RecordExecutedWithPrice:
		x := rec.ExecutedWithPrice
		e.applyExecute(x.OrderRefNum, uint64(x.ExecutedShares), rec.Timestamp)

	case wirev1.RecordCancel:
		c := rec.Cancel
		symbol, ok := e.orderSymbol[c.OrderRefNum]
		if !ok {
			return
		}
		book := e.books.GetOrCreate(symbol)
		before := book.OrderCount()
		if err := book.CancelOrder(orderbookv1.OrderID(c.OrderRefNum), uint64(c.CancelledShares), rec.Timestamp); err != nil {
			e.logger.Warn("cancel_order rejected", logger.NewField("order_ref", c.OrderRefNum), logger.NewField("error", err.Error()))
			return
		}
		if book.OrderCount() < before {
			delete(e.orderSymbol, c.OrderRefNum)
		}

	case wirev1.RecordDelete:
		d := rec.Delete
		symbol, ok := e.orderSymbol[d.OrderRefNum]
		if !ok {
			return
		}
		book := e.books.GetOrCreate(symbol)
		if err := book.DeleteOrder(orderbookv1.OrderID(d.OrderRefNum), rec.Timestamp); err != nil {
			e.logger.Warn("delete_order rejected", logger.NewField("order_ref", d.OrderRefNum), logger.NewField("error", err.Error()))
			return
		}
		delete(e.orderSymbol, d.OrderRefNum)

	case wirev1.RecordReplace:
		r := rec.Replace
		symbol, ok := e.orderSymbol[r.OriginalOrderRefNum]
		if !ok {
			return
		}
		book := e.books.GetOrCreate(symbol)
		err := book.ReplaceOrder(
			orderbookv1.OrderID(r.OriginalOrderRefNum),
			orderbookv1.OrderID(r.NewOrderRefNum),
			uint64(r.Shares),
			orderbookv1.PriceTicks(r.Price),
			rec.Timestamp,
		)
		if err != nil {
			e.logger.Warn("replace_order rejected", logger.NewField("order_ref", r.OriginalOrderRefNum), logger.NewField("error", err.Error()))
			return
		}
		delete(e.orderSymbol, r.OriginalOrderRefNum)
		e.orderSymbol[r.NewOrderRefNum] = symbol

	case wirev1.RecordTrade:
		t := rec.Trade
		e.bufferTick(t.Symbol, t.Price, uint64(t.Shares), toBookSide(t.Side), tickstorev1.FlagTrade, rec.Timestamp)

	case wirev1.RecordTradeReport:
		t := rec.TradeReport
		e.bufferTick(t.Symbol, t.Price, uint64(t.Size), orderbookv1.SideBuy, tickstorev1.FlagTrade, rec.Timestamp)

	default:
		// SystemEvent, StockDirectory, QuoteUpdate, PriceLevelUpdate,
		// SecurityDirectory, TradingStatus: informational, drive no book
		// operation (spec §4.1.2 / Non-goal against MBO-from-MBP
		// reconstruction).
	}
}

func (e *Engine) applyExecute(orderRef uint64, qty uint64, ts uint64) {
	symbol, ok := e.orderSymbol[orderRef]
	if !ok {
		return
	}
	book := e.books.GetOrCreate(symbol)
	before := book.OrderCount()
	if err := book.ExecuteOrder(orderbookv1.OrderID(orderRef), qty, ts); err != nil {
		e.logger.Warn("execute_order rejected", logger.NewField("order_ref", orderRef), logger.NewField("error", err.Error()))
		return
	}
	if book.OrderCount() < before {
		delete(e.orderSymbol, orderRef)
	}
}

func toBookSide(s wirev1.Side) orderbookv1.Side {
	if s == wirev1.SideBuy {
		return orderbookv1.SideBuy
	}
	return orderbookv1.SideSell
}

func (e *Engine) bufferTick(symbol string, price int64, size uint64, side orderbookv1.Side, flags uint8, ts uint64) {
	if e.ticks == nil {
		return
	}
	rec := tickstorev1.TickRecord{Timestamp: ts, Price: price, Size: size, Flags: flags}
	if side == orderbookv1.SideSell {
		rec.Side = 1
	}
	copy(rec.Symbol[:], symbol)
	e.tickBuf = append(e.tickBuf, rec)
	if len(e.tickBuf) >= e.options.TickFlushBatchSize {
		e.flushTicks()
	}
}

func (e *Engine) flushTicks() {
	if e.ticks == nil || len(e.tickBuf) == 0 {
		return
	}
	if err := e.ticks.Append(e.tickBuf); err != nil {
		e.logger.Error(err, logger.NewField("count", len(e.tickBuf)))
	}
	e.tickBuf = e.tickBuf[:0]
}

func (e *Engine) publishAllSnapshots(ctx context.Context) {
	if e.snaps == nil {
		return
	}
	now := uint64(time.Now().UnixNano())
	for _, symbol := range e.books.Symbols() {
		book := e.books.GetOrCreate(symbol)
		snap := book.Snapshot(now)
		if err := e.snaps.Store(ctx, symbol, snap); err != nil {
			e.logger.Error(err, logger.NewField("symbol", symbol))
		}
	}
}

// MessageCount returns the number of records the consumer has applied.
func (e *Engine) MessageCount() uint64 { return e.messageCount.Load() }

// UnknownTypeCount returns the number of UnknownType decode errors seen.
func (e *Engine) UnknownTypeCount() uint64 { return e.unknownCount.Load() }

// MalformedFrameCount returns the number of MalformedFrame decode errors
// seen.
func (e *Engine) MalformedFrameCount() uint64 { return e.malformedCount.Load() }
