package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/model"
)

const writeTimeout = 5 * time.Second

// Collector is a client of the control-plane session endpoint. It
// assigns ids from a process-local counter and tags every notification
// with a per-process uuid, so lifecycle events can be routed back to
// the collector that originated them.
type Collector struct {
	conn *websocket.Conn
	uuid string
	next atomic.Uint32

	// OnClosed and OnAction receive lifecycle events for this
	// collector's notifications. Set them before calling Listen.
	OnClosed func(model.NotificationClosed)
	OnAction func(model.ActionInvoked)
}

// Dial connects to the control plane at addr (host:port or http URL).
func Dial(ctx context.Context, addr string) (*Collector, error) {
	endpoint, err := sessionURL(addr)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial control plane at %s: %w", endpoint, err)
	}

	return &Collector{conn: conn, uuid: uuid.NewString()}, nil
}

func sessionURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse control plane address: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/api/session"
	return u.String(), nil
}

// Close tears down the session.
func (c *Collector) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// UUID is this collector instance's identity tag.
func (c *Collector) UUID() string {
	return c.uuid
}

// nextID hands out ids starting at 1. Zero is never used; the counter
// wraps back to 1 after exhausting the id space.
func (c *Collector) nextID() uint32 {
	id := c.next.Add(1)
	if id == 0 {
		id = c.next.Add(1)
	}
	return id
}

// Notify assigns an id, uuid and timestamp to the notification and
// ships it. The assigned id is returned for later Close calls.
func (c *Collector) Notify(ctx context.Context, n model.Notification) (uint32, error) {
	n.ID = c.nextID()
	n.UUID = c.uuid
	if n.Timestamp == 0 {
		n.Timestamp = time.Now().UnixMilli()
	}

	if err := c.write(ctx, model.CollectorMessage{NewNotification: &n}); err != nil {
		return 0, err
	}
	return n.ID, nil
}

// CloseNotification requests takedown of a previously sent notification.
func (c *Collector) CloseNotification(ctx context.Context, id uint32) error {
	return c.CloseNotificationFor(ctx, id, c.uuid)
}

// CloseNotificationFor requests takedown on behalf of another collector
// instance, for control tooling that outlives the sender.
func (c *Collector) CloseNotificationFor(ctx context.Context, id uint32, uuid string) error {
	return c.write(ctx, model.CollectorMessage{
		CloseNotification: &model.CloseNotification{ID: id, UUID: uuid},
	})
}

func (c *Collector) write(ctx context.Context, msg model.CollectorMessage) error {
	writeCtx, done := context.WithTimeout(ctx, writeTimeout)
	defer done()
	if err := wsjson.Write(writeCtx, c.conn, msg); err != nil {
		return fmt.Errorf("write collector message: %w", err)
	}
	return nil
}

// Listen reads lifecycle events until ctx is done or the session
// drops. The control plane fans out every event unfiltered; events
// tagged with another collector's uuid are dropped here.
func (c *Collector) Listen(ctx context.Context) error {
	for {
		var msg model.ControlPlaneMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("read control plane message: %w", err)
		}

		switch {
		case msg.NotificationClosed != nil:
			ev := *msg.NotificationClosed
			if ev.UUID != c.uuid {
				zlog.Logger.Debug().Uint32("id", ev.ID).Str("uuid", ev.UUID).Msg("close event for another collector, dropping")
				continue
			}
			if c.OnClosed != nil {
				c.OnClosed(ev)
			}
		case msg.ActionInvoked != nil:
			ev := *msg.ActionInvoked
			if ev.UUID != c.uuid {
				zlog.Logger.Debug().Uint32("id", ev.ID).Str("uuid", ev.UUID).Msg("action event for another collector, dropping")
				continue
			}
			if c.OnAction != nil {
				c.OnAction(ev)
			}
		}
	}
}
