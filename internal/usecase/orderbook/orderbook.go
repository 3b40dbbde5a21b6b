// Package orderbook implements the market-by-order book engine: a single
// id-indexed order map plus two aggregate ladders, kept consistent on
// every mutation. The book is not internally synchronised — per the
// concurrency model, all mutation happens on one consumer thread/goroutine
// and nothing here takes a lock.
package orderbook

import (
	orderbookv1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/orderbook/v1"
)

// OrderBook is a single symbol's market-by-order book: an order_id → Order
// index plus a bid and an ask Ladder of aggregate PriceLevels, kept
// consistent on every operation. There is no Order → Level back pointer;
// the id-map owns Orders by value and the ladders hold only aggregated
// counts, keeping the data model a forest.
type OrderBook struct {
	Symbol string

	orders map[orderbookv1.OrderID]orderbookv1.Order
	bids   *orderbookv1.Ladder
	asks   *orderbookv1.Ladder

	bidTotal uint64
	askTotal uint64

	messageCount uint64
	lastUpdateTs uint64

	// poisoned is set once an InvariantViolation is raised; the book then
	// refuses every further mutation rather than attempt to self-heal.
	poisoned bool
}

// NewOrderBook constructs an empty book for symbol.
func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		orders: make(map[orderbookv1.OrderID]orderbookv1.Order),
		bids:   orderbookv1.NewLadder(true),
		asks:   orderbookv1.NewLadder(false),
	}
}

func (b *OrderBook) ladder(side orderbookv1.Side) *orderbookv1.Ladder {
	if side == orderbookv1.SideBuy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) addSideTotal(side orderbookv1.Side, qty uint64) {
	if side == orderbookv1.SideBuy {
		b.bidTotal += qty
	} else {
		b.askTotal += qty
	}
}

func (b *OrderBook) subSideTotal(side orderbookv1.Side, qty uint64) {
	if side == orderbookv1.SideBuy {
		b.bidTotal -= qty
	} else {
		b.askTotal -= qty
	}
}

func (b *OrderBook) touch(ts uint64) {
	b.messageCount++
	b.lastUpdateTs = ts
}

// checkPoisoned returns ErrInvariantViolation if a prior operation already
// poisoned the book; every exported mutator starts with this guard.
func (b *OrderBook) checkPoisoned() error {
	if b.poisoned {
		return orderbookv1.ErrInvariantViolation
	}
	return nil
}

// AddOrder creates a new resting order, incrementing its level's size and
// order count and the side total. Fails with ErrDuplicateOrderID if id is
// already resting; book state is unchanged in that case.
func (b *OrderBook) AddOrder(id orderbookv1.OrderID, side orderbookv1.Side, price orderbookv1.PriceTicks, qty uint64, ts uint64) error {
	if err := b.checkPoisoned(); err != nil {
		return err
	}
	if _, exists := b.orders[id]; exists {
		return orderbookv1.ErrDuplicateOrderID
	}

	b.orders[id] = orderbookv1.Order{ID: id, Side: side, Price: price, Quantity: qty, Timestamp: ts}
	b.ladder(side).AddToLevel(price, qty)
	b.addSideTotal(side, qty)
	b.touch(ts)
	return nil
}

// ModifyOrder removes id's old contribution and, if newQty > 0, re-adds it
// at the same side/price with the updated quantity and timestamp;
// otherwise the order is removed entirely. Fails with ErrUnknownOrderID if
// id is not resting.
func (b *OrderBook) ModifyOrder(id orderbookv1.OrderID, newQty uint64, ts uint64) error {
	if err := b.checkPoisoned(); err != nil {
		return err
	}
	order, exists := b.orders[id]
	if !exists {
		return orderbookv1.ErrUnknownOrderID
	}

	if err := b.ladder(order.Side).RemoveFromLevel(order.Price, order.Quantity); err != nil {
		b.poisoned = true
		return err
	}
	b.subSideTotal(order.Side, order.Quantity)
	delete(b.orders, id)

	if newQty > 0 {
		order.Quantity = newQty
		order.Timestamp = ts
		b.orders[id] = order
		b.ladder(order.Side).AddToLevel(order.Price, newQty)
		b.addSideTotal(order.Side, newQty)
	}
	b.touch(ts)
	return nil
}

// CancelOrder decrements id's resting quantity by cancelledQty; if the
// result is <= 0 the order is removed. Fails with ErrUnknownOrderID if id
// is not resting.
func (b *OrderBook) CancelOrder(id orderbookv1.OrderID, cancelledQty uint64, ts uint64) error {
	if err := b.checkPoisoned(); err != nil {
		return err
	}
	order, exists := b.orders[id]
	if !exists {
		return orderbookv1.ErrUnknownOrderID
	}
	return b.shrinkOrRemove(order, cancelledQty, ts)
}

// ExecuteOrder decrements id's resting quantity by executedQty; if the
// result is <= 0 the order is removed. Fails with ErrUnknownOrderID if id
// is not resting.
func (b *OrderBook) ExecuteOrder(id orderbookv1.OrderID, executedQty uint64, ts uint64) error {
	if err := b.checkPoisoned(); err != nil {
		return err
	}
	order, exists := b.orders[id]
	if !exists {
		return orderbookv1.ErrUnknownOrderID
	}
	return b.shrinkOrRemove(order, executedQty, ts)
}

// shrinkOrRemove is the shared decrement-or-remove path for CancelOrder
// and ExecuteOrder: both reduce a resting order's quantity by some amount
// and remove it outright once that amount would reach zero or go negative.
func (b *OrderBook) shrinkOrRemove(order orderbookv1.Order, reduceBy uint64, ts uint64) error {
	if reduceBy >= order.Quantity {
		if err := b.ladder(order.Side).RemoveFromLevel(order.Price, order.Quantity); err != nil {
			b.poisoned = true
			return err
		}
		b.subSideTotal(order.Side, order.Quantity)
		delete(b.orders, order.ID)
		b.touch(ts)
		return nil
	}

	if err := b.ladder(order.Side).ReduceSize(order.Price, reduceBy); err != nil {
		b.poisoned = true
		return err
	}
	b.subSideTotal(order.Side, reduceBy)

	order.Quantity -= reduceBy
	order.Timestamp = ts
	b.orders[order.ID] = order
	b.touch(ts)
	return nil
}

// DeleteOrder removes id entirely. Fails with ErrUnknownOrderID if id is
// not resting.
func (b *OrderBook) DeleteOrder(id orderbookv1.OrderID, ts uint64) error {
	if err := b.checkPoisoned(); err != nil {
		return err
	}
	order, exists := b.orders[id]
	if !exists {
		return orderbookv1.ErrUnknownOrderID
	}

	if err := b.ladder(order.Side).RemoveFromLevel(order.Price, order.Quantity); err != nil {
		b.poisoned = true
		return err
	}
	b.subSideTotal(order.Side, order.Quantity)
	delete(b.orders, id)
	b.touch(ts)
	return nil
}

// ReplaceOrder atomically deletes oldID and adds newID at the same side
// with newPrice/newQty. If oldID is absent, or newID collides with an
// existing order, NOTHING changes — in particular a colliding add does not
// leave oldID deleted.
func (b *OrderBook) ReplaceOrder(oldID, newID orderbookv1.OrderID, newQty uint64, newPrice orderbookv1.PriceTicks, ts uint64) error {
	if err := b.checkPoisoned(); err != nil {
		return err
	}
	order, exists := b.orders[oldID]
	if !exists {
		return orderbookv1.ErrUnknownOrderID
	}
	if oldID != newID {
		if _, collides := b.orders[newID]; collides {
			return orderbookv1.ErrDuplicateOrderID
		}
	}

	if err := b.ladder(order.Side).RemoveFromLevel(order.Price, order.Quantity); err != nil {
		b.poisoned = true
		return err
	}
	b.subSideTotal(order.Side, order.Quantity)
	delete(b.orders, oldID)

	b.orders[newID] = orderbookv1.Order{ID: newID, Side: order.Side, Price: newPrice, Quantity: newQty, Timestamp: ts}
	b.ladder(order.Side).AddToLevel(newPrice, newQty)
	b.addSideTotal(order.Side, newQty)
	b.touch(ts)
	return nil
}

// BestBid returns the highest resting bid level, or nil if no bids rest.
func (b *OrderBook) BestBid() *orderbookv1.PriceLevel { return b.bids.Best() }

// BestAsk returns the lowest resting ask level, or nil if no asks rest.
func (b *OrderBook) BestAsk() *orderbookv1.PriceLevel { return b.asks.Best() }

// Spread is (best_ask - best_bid) / 10000, or 0 if either side is empty.
func (b *OrderBook) Spread() float64 {
	bid, ask := b.bids.Best(), b.asks.Best()
	if bid == nil || ask == nil {
		return 0
	}
	return float64(ask.Price-bid.Price) / 10000.0
}

// MidPrice is (best_bid + best_ask) / 20000, or 0 if either side is empty.
func (b *OrderBook) MidPrice() float64 {
	bid, ask := b.bids.Best(), b.asks.Best()
	if bid == nil || ask == nil {
		return 0
	}
	return float64(bid.Price+ask.Price) / 20000.0
}

// Imbalance is (bid_qty - ask_qty) / (bid_qty + ask_qty), in [-1, 1], or 0
// if both side totals are zero.
func (b *OrderBook) Imbalance() float64 {
	total := b.bidTotal + b.askTotal
	if total == 0 {
		return 0
	}
	return (float64(b.bidTotal) - float64(b.askTotal)) / float64(total)
}

// HasCrossing reports best_bid >= best_ask — never true under a
// well-formed feed from a healthy exchange; true is evidence of gapped or
// out-of-order messages, reported rather than repaired.
func (b *OrderBook) HasCrossing() bool {
	bid, ask := b.bids.Best(), b.asks.Best()
	if bid == nil || ask == nil {
		return false
	}
	return bid.Price >= ask.Price
}

// GetBidDepth returns the first min(n, bid-levels) levels, best first.
func (b *OrderBook) GetBidDepth(n int) []orderbookv1.PriceLevel { return b.bids.Depth(n) }

// GetAskDepth returns the first min(n, ask-levels) levels, best first.
func (b *OrderBook) GetAskDepth(n int) []orderbookv1.PriceLevel { return b.asks.Depth(n) }

// TotalBidQty is the sum of all resting bid order quantities.
func (b *OrderBook) TotalBidQty() uint64 { return b.bidTotal }

// TotalAskQty is the sum of all resting ask order quantities.
func (b *OrderBook) TotalAskQty() uint64 { return b.askTotal }

// OrderCount is the number of currently-resting orders, across both sides.
func (b *OrderBook) OrderCount() int { return len(b.orders) }

// Poisoned reports whether an invariant violation has permanently disabled
// further mutation of this book.
func (b *OrderBook) Poisoned() bool { return b.poisoned }

// Snapshot returns the immutable, cheap-to-copy view of current book
// state — the only exported view of book internals.
func (b *OrderBook) Snapshot(timestamp uint64) orderbookv1.Snapshot {
	snap := orderbookv1.Snapshot{
		Symbol:       b.Symbol,
		Timestamp:    timestamp,
		Spread:       b.Spread(),
		MidPrice:     b.MidPrice(),
		Imbalance:    b.Imbalance(),
		HasCrossing:  b.HasCrossing(),
		BidLevels:    b.bids.Len(),
		AskLevels:    b.asks.Len(),
		MessageCount: b.messageCount,
		LastUpdateTs: b.lastUpdateTs,
	}
	if bid := b.bids.Best(); bid != nil {
		snap.BestBid = bid.Price
		snap.BestBidSize = bid.Size
	}
	if ask := b.asks.Best(); ask != nil {
		snap.BestAsk = ask.Price
		snap.BestAskSize = ask.Size
	}
	return snap
}
