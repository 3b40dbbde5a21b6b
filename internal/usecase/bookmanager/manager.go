// Package bookmanager multiplexes order books by symbol for the consumer
// thread. It owns an insertion-lazy symbol -> OrderBook mapping and is
// itself owned by a single thread — callers must not share a BookManager
// across goroutines without external synchronisation.
package bookmanager

import (
	"github.com/muhammadchandra19/exchange/services/feed-engine/internal/usecase/orderbook"
)

// BookManager holds one OrderBook per symbol, created on first reference.
type BookManager struct {
	books map[string]*orderbook.OrderBook
}

// New constructs an empty manager.
func New() *BookManager {
	return &BookManager{books: make(map[string]*orderbook.OrderBook)}
}

// GetOrCreate is the sole entry point: it returns the existing book for
// symbol, creating one on first reference.
func (m *BookManager) GetOrCreate(symbol string) *orderbook.OrderBook {
	if b, ok := m.books[symbol]; ok {
		return b
	}
	b := orderbook.NewOrderBook(symbol)
	m.books[symbol] = b
	return b
}

// Symbols returns the set of symbols with a book, in no particular order.
func (m *BookManager) Symbols() []string {
	out := make([]string, 0, len(m.books))
	for s := range m.books {
		out = append(out, s)
	}
	return out
}

// Size returns the number of books currently managed.
func (m *BookManager) Size() int {
	return len(m.books)
}
