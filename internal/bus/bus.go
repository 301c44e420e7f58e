package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/zlog"
)

// Stream and field names are the wire contract between services; changing
// any of them is a breaking change for every consumer group.
const (
	StreamNotify             = "notify"
	StreamCloseNotification  = "close_notification"
	StreamNotificationClosed = "notification_closed"
	StreamActionInvoked      = "action_invoked"

	FieldNotification      = "notification"
	FieldCloseNotification = "close_notification"
	FieldAction            = "action"

	ChannelNotification       = "pubsub:notification"
	ChannelNotificationClosed = "pubsub:notification_closed"
	ChannelActionInvoked      = "pubsub:action_invoked"

	GroupIndexer      = "indexer-group"
	GroupScheduler    = "scheduler-group"
	GroupControlPlane = "control-plane-group"

	activeKey = "active"
)

const (
	// CursorNew reads records never delivered to this group.
	CursorNew = ">"
	// CursorPending re-reads records delivered to this consumer but not
	// yet acked.
	CursorPending = "0"
)

const (
	reconnectBase = time.Second
	reconnectCap  = 30 * time.Second
)

// Bus wraps the redis connection shared by all services: durable streams
// with consumer groups, best-effort pub/sub and the active-notification
// hash.
type Bus struct {
	rdb *redis.Client
}

// Connect opens a connection from a redis:// URL and pings it.
func Connect(ctx context.Context, address string) (*Bus, error) {
	opts, err := redis.ParseURL(address)
	if err != nil {
		return nil, fmt.Errorf("parse bus address: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping bus: %w", err)
	}

	return &Bus{rdb: rdb}, nil
}

// Close releases the underlying connection.
func (b *Bus) Close() error {
	return b.rdb.Close()
}

// Append marshals the payload and appends it to the stream under the
// given field. Stream order is append order; the control plane relies on
// this for new-before-close per id.
func (b *Bus) Append(ctx context.Context, stream, field string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", stream, err)
	}

	err = b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{field: string(body)},
	}).Err()
	if err != nil {
		return fmt.Errorf("append to %s: %w", stream, err)
	}

	return nil
}

// EnsureGroup creates the consumer group at "$" (only new messages),
// tolerating a group that already exists.
func (b *Bus) EnsureGroup(ctx context.Context, stream, group string) error {
	err := b.rdb.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", group, stream, err)
	}
	return nil
}

// Read fetches up to count records for the consumer. Cursor is CursorNew
// or CursorPending. A redis.Nil error means the block timed out with
// nothing to deliver.
func (b *Bus) Read(ctx context.Context, stream, group, consumer, cursor string, count int64, block time.Duration) ([]redis.XMessage, error) {
	streams, err := b.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, cursor},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		return nil, err
	}

	var msgs []redis.XMessage
	for _, s := range streams {
		msgs = append(msgs, s.Messages...)
	}
	return msgs, nil
}

// Ack acknowledges records for the group.
func (b *Bus) Ack(ctx context.Context, stream, group string, ids ...string) error {
	return b.rdb.XAck(ctx, stream, group, ids...).Err()
}

// Publish sends a payload on an ephemeral pub/sub channel. Subscribers
// that are slow or absent simply miss it.
func (b *Bus) Publish(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", channel, err)
	}
	if err := b.rdb.Publish(ctx, channel, string(body)).Err(); err != nil {
		return fmt.Errorf("publish on %s: %w", channel, err)
	}
	return nil
}

// Event is one pub/sub delivery.
type Event struct {
	Channel string
	Payload []byte
}

// SubscribeEvents subscribes to the channels and forwards deliveries
// until ctx is done. The returned stop function closes the subscription.
func (b *Bus) SubscribeEvents(ctx context.Context, channels ...string) (<-chan Event, func()) {
	ps := b.rdb.Subscribe(ctx, channels...)
	out := make(chan Event, 64)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ps.Channel():
				if !ok {
					return
				}
				select {
				case out <- Event{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, func() { _ = ps.Close() }
}

// SetActive records the last-seen payload for a live notification,
// used by late joiners to reconcile.
func (b *Bus) SetActive(ctx context.Context, id uint32, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal active payload: %w", err)
	}
	return b.rdb.HSet(ctx, activeKey, strconv.FormatUint(uint64(id), 10), string(body)).Err()
}

// RemoveActive drops the entry once the notification is closed.
func (b *Bus) RemoveActive(ctx context.Context, id uint32) error {
	return b.rdb.HDel(ctx, activeKey, strconv.FormatUint(uint64(id), 10)).Err()
}

// ActiveAll returns every live notification payload keyed by id.
func (b *Bus) ActiveAll(ctx context.Context) (map[string]string, error) {
	return b.rdb.HGetAll(ctx, activeKey).Result()
}

// Client exposes the raw redis client for components that keep their own
// keys (the scheduler's client-state store).
func (b *Bus) Client() *redis.Client {
	return b.rdb
}

// Payload extracts the JSON body stored under field, or false when the
// record is malformed.
func Payload(msg redis.XMessage, field string) ([]byte, bool) {
	raw, ok := msg.Values[field]
	if !ok {
		return nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	return []byte(s), true
}

// Consume reads the stream with the group cursor ">" and hands each
// record's field payload to fn, acking afterwards regardless of the
// handler outcome: payload errors are the handler's to log, and acking
// avoids poison-pill redelivery loops. Read errors back off with
// min(1s*2^n, 30s) until ctx is done.
func (b *Bus) Consume(ctx context.Context, stream, field, group, consumer string, fn func(ctx context.Context, payload []byte) error) {
	delay := reconnectBase

	for {
		if ctx.Err() != nil {
			return
		}

		msgs, err := b.Read(ctx, stream, group, consumer, CursorNew, 10, 5*time.Second)
		if err == redis.Nil {
			delay = reconnectBase
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zlog.Logger.Warn().Err(err).Str("stream", stream).Msg("stream read failed, backing off")
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if delay *= 2; delay > reconnectCap {
				delay = reconnectCap
			}
			continue
		}
		delay = reconnectBase

		for _, msg := range msgs {
			payload, ok := Payload(msg, field)
			if !ok {
				zlog.Logger.Warn().Str("stream", stream).Str("id", msg.ID).Msg("record missing payload field, skipping")
			} else if err := fn(ctx, payload); err != nil {
				zlog.Logger.Warn().Err(err).Str("stream", stream).Str("id", msg.ID).Msg("record handler failed, acking anyway")
			}

			if err := b.Ack(ctx, stream, group, msg.ID); err != nil && ctx.Err() == nil {
				zlog.Logger.Warn().Err(err).Str("stream", stream).Str("id", msg.ID).Msg("failed to ack record")
			}
		}
	}
}
