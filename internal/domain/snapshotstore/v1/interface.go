// Package snapshotstorev1 declares the interface for publishing book
// snapshots to an external store, independent of which store backs it.
package snapshotstorev1

import (
	"context"

	orderbookv1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/orderbook/v1"
)

// Store persists and retrieves the latest published Snapshot per symbol.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=snapshotstorev1_mock
type Store interface {
	Store(ctx context.Context, symbol string, snapshot orderbookv1.Snapshot) error
	Load(ctx context.Context, symbol string) (*orderbookv1.Snapshot, error)
}
