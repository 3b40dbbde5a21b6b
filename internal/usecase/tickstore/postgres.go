// Package tickstore persists and replays the fixed-layout tick record
// (spec §6) via Postgres, grounded on the teacher's pgx pool client
// (pkg/questdb) but trimmed to this repo's append/read-all needs.
package tickstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	tickstorev1 "github.com/muhammadchandra19/exchange/services/feed-engine/internal/domain/tickstore/v1"
	pkgerrors "github.com/muhammadchandra19/exchange/services/feed-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange/services/feed-engine/pkg/logger"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS ticks (
	ts       BIGINT NOT NULL,
	symbol   TEXT NOT NULL,
	price    BIGINT NOT NULL,
	size     BIGINT NOT NULL,
	side     SMALLINT NOT NULL,
	flags    SMALLINT NOT NULL
)`

// Store persists TickRecords to a Postgres "ticks" table and replays them
// back ordered by timestamp.
type Store struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

var _ tickstorev1.Store = (*Store)(nil)

// NewStore connects to dsn and ensures the backing table exists.
func NewStore(ctx context.Context, dsn string, log *logger.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("tickstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("tickstore: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("tickstore: create table: %w", err)
	}
	return &Store{pool: pool, logger: log}, nil
}

// Append bulk-inserts records via CopyFrom, the low-overhead path for the
// consumer thread's periodic tick flush.
func (s *Store) Append(records []tickstorev1.TickRecord) error {
	if len(records) == 0 {
		return nil
	}
	ctx := context.Background()

	rows := make([][]any, len(records))
	for i, r := range records {
		symbol := symbolToString(r.Symbol)
		rows[i] = []any{int64(r.Timestamp), symbol, r.Price, int64(r.Size), int16(r.Side), int16(r.Flags)}
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"ticks"},
		[]string{"ts", "symbol", "price", "size", "side", "flags"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		s.logger.Error(err, logger.NewField("count", len(records)))
		return pkgerrors.NewTracer("tickstore_append_error").Wrap(err)
	}
	return nil
}

// ReadAll replays every persisted tick for symbol, ordered by timestamp
// ascending. The order of ticks with equal timestamps is not defined.
func (s *Store) ReadAll(symbol string) ([]tickstorev1.TickRecord, error) {
	ctx := context.Background()
	rows, err := s.pool.Query(ctx,
		`SELECT ts, symbol, price, size, side, flags FROM ticks WHERE symbol = $1 ORDER BY ts ASC`,
		symbol,
	)
	if err != nil {
		return nil, pkgerrors.NewTracer("tickstore_read_error").Wrap(err)
	}
	defer rows.Close()

	var out []tickstorev1.TickRecord
	for rows.Next() {
		var (
			ts, price, size int64
			sym             string
			side, flags     int16
		)
		if err := rows.Scan(&ts, &sym, &price, &size, &side, &flags); err != nil {
			return nil, pkgerrors.NewTracer("tickstore_scan_error").Wrap(err)
		}
		rec := tickstorev1.TickRecord{
			Timestamp: uint64(ts),
			Price:     price,
			Size:      uint64(size),
			Side:      uint8(side),
			Flags:     uint8(flags),
		}
		copy(rec.Symbol[:], sym)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewTracer("tickstore_rows_error").Wrap(err)
	}
	return out, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func symbolToString(b [8]byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == ' ' || b[end-1] == 0) {
		end--
	}
	return string(b[:end])
}
