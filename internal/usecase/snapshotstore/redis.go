// Package snapshotstore publishes per-symbol book snapshots to Redis,
// keyed so a separate reader process (a broadcaster, a dashboard) can
// observe book state without touching the book thread.
package snapshotstore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	orderbookv1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/orderbook/v1"
	snapshotstorev1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/snapshotstore/v1"
	pkgerrors "github.com/muhammadchandra19/exchange/services/feed-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange/services/feed-engine/pkg/logger"
)

// Store persists the latest Snapshot per symbol as a JSON value in Redis.
type Store struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

var _ snapshotstorev1.Store = (*Store)(nil)

// NewStore constructs a Store over an already-connected Redis client.
func NewStore(client *redis.Client, keyPrefix string, log *logger.Logger) *Store {
	return &Store{client: client, keyPrefix: keyPrefix, logger: log}
}

func (s *Store) key(symbol string) string {
	return s.keyPrefix + symbol
}

// Store writes symbol's latest snapshot to Redis, overwriting any prior
// value.
func (s *Store) Store(ctx context.Context, symbol string, snapshot orderbookv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error(err, logger.NewField("symbol", symbol))
		return pkgerrors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.client.Set(ctx, s.key(symbol), buf, 0).Err(); err != nil {
		s.logger.Error(err, logger.NewField("symbol", symbol))
		return pkgerrors.NewTracer("snapshot_store_error").Wrap(err)
	}
	return nil
}

// Load reads symbol's latest snapshot, returning (nil, nil) if none has
// been published yet.
func (s *Store) Load(ctx context.Context, symbol string) (*orderbookv1.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(symbol)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		s.logger.Error(err, logger.NewField("symbol", symbol))
		return nil, pkgerrors.NewTracer("snapshot_load_error").Wrap(err)
	}

	var snap orderbookv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		s.logger.Error(err, logger.NewField("symbol", symbol))
		return nil, pkgerrors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}
	return &snap, nil
}
