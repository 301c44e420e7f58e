package indexer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/bus"
	"github.com/mox-desktop/moxnotify/internal/index"
	"github.com/mox-desktop/moxnotify/internal/model"
)

const (
	consumerName = "indexer-1"
	batchSize    = 64
	blockTimeout = 5 * time.Second
)

const (
	reconnectBase = time.Second
	reconnectCap  = 30 * time.Second
)

//go:generate mockgen -source=indexer.go -destination=../mocks/indexer/mock.go -package=mocks

// StreamSource is the slice of the bus the indexer reads from.
type StreamSource interface {
	EnsureGroup(ctx context.Context, stream, group string) error
	Read(ctx context.Context, stream, group, consumer, cursor string, count int64, block time.Duration) ([]redis.XMessage, error)
	Ack(ctx context.Context, stream, group string, ids ...string) error
}

// DocumentStore is where parsed notifications land.
type DocumentStore interface {
	Add(doc index.Document) error
}

// Indexer tails the notify stream and writes each record into the
// full-text index. Records are acked only after a successful index
// write; a crash between write and ack redelivers the record and the
// index keeps the duplicate.
type Indexer struct {
	source StreamSource
	store  DocumentStore
}

func New(source StreamSource, store DocumentStore) *Indexer {
	return &Indexer{source: source, store: store}
}

// Run drives the consumer loop until ctx is done. Each iteration
// alternates between pending records (delivered but unacked, left over
// from a crash) and new ones, so a restart drains its backlog while
// still keeping up with the stream.
func (ix *Indexer) Run(ctx context.Context) error {
	if err := ix.source.EnsureGroup(ctx, bus.StreamNotify, bus.GroupIndexer); err != nil {
		return err
	}

	cursor := bus.CursorPending
	delay := reconnectBase

	for {
		if ctx.Err() != nil {
			return nil
		}

		msgs, err := ix.source.Read(ctx, bus.StreamNotify, bus.GroupIndexer, consumerName, cursor, batchSize, blockTimeout)
		if err == redis.Nil {
			cursor = flip(cursor)
			delay = reconnectBase
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			zlog.Logger.Warn().Err(err).Msg("stream read failed, backing off")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			if delay *= 2; delay > reconnectCap {
				delay = reconnectCap
			}
			continue
		}
		delay = reconnectBase

		// The pending cursor returns an empty (non-Nil) reply once the
		// backlog is drained.
		if len(msgs) == 0 {
			cursor = flip(cursor)
			continue
		}

		for _, msg := range msgs {
			if err := ix.handle(ctx, msg); err != nil {
				// Leave the record pending so the next pass retries it.
				zlog.Logger.Error().Err(err).Str("id", msg.ID).Msg("failed to index record, leaving pending")
				continue
			}
			if err := ix.source.Ack(ctx, bus.StreamNotify, bus.GroupIndexer, msg.ID); err != nil && ctx.Err() == nil {
				zlog.Logger.Warn().Err(err).Str("id", msg.ID).Msg("failed to ack record")
			}
		}

		cursor = flip(cursor)
	}
}

// handle parses and indexes one record. Malformed payloads are logged
// and reported as handled so they get acked instead of redelivered
// forever.
func (ix *Indexer) handle(ctx context.Context, msg redis.XMessage) error {
	payload, ok := bus.Payload(msg, bus.FieldNotification)
	if !ok {
		zlog.Logger.Warn().Str("id", msg.ID).Msg("record missing notification field, skipping")
		return nil
	}

	var n model.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		zlog.Logger.Warn().Err(err).Str("id", msg.ID).Msg("unparseable notification record, skipping")
		return nil
	}

	if err := ix.store.Add(index.FromNotification(n)); err != nil {
		return err
	}

	zlog.Logger.Debug().Uint32("notification_id", n.ID).Str("app", n.AppName).Msg("indexed notification")
	return nil
}

func flip(cursor string) string {
	if cursor == bus.CursorNew {
		return bus.CursorPending
	}
	return bus.CursorNew
}
