package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mox-desktop/moxnotify/internal/model"
)

// Options configure a viewer subscription.
type Options struct {
	// ClientID keys the server-side view state; pass a stable token to
	// survive reconnects. Empty lets the scheduler derive one from the
	// transport peer.
	ClientID string
	// MaxVisible is the viewport height; the scheduler defaults it when
	// zero.
	MaxVisible int
	// History orders notifications newest-first.
	History bool
}

// Client calls the scheduler's unary endpoints without holding a
// notification stream.
type Client struct {
	http *http.Client
	base string
}

// NewClient builds a unary client for the scheduler at addr (host:port
// or http URL).
func NewClient(addr string) (*Client, error) {
	base, err := baseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		http: &http.Client{Timeout: 10 * time.Second},
		base: base,
	}, nil
}

// Viewer is a subscribed client of the scheduler: the notification
// stream plus the unary viewport calls scoped to its own client id.
type Viewer struct {
	*Client
	conn     *websocket.Conn
	clientID string
}

// Dial connects to the scheduler, registers, and returns a subscribed
// viewer.
func Dial(ctx context.Context, addr string, opts Options) (*Viewer, error) {
	client, err := NewClient(addr)
	if err != nil {
		return nil, err
	}

	wsURL := strings.Replace(client.base, "http", "ws", 1) + "/api/notify"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial scheduler at %s: %w", wsURL, err)
	}

	req := model.ClientNotifyRequest{
		ClientID:   opts.ClientID,
		MaxVisible: opts.MaxVisible,
		History:    opts.History,
	}
	if err := wsjson.Write(ctx, conn, req); err != nil {
		conn.Close(websocket.StatusInternalError, "register failed")
		return nil, fmt.Errorf("register viewer: %w", err)
	}

	return &Viewer{Client: client, conn: conn, clientID: opts.ClientID}, nil
}

func baseURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse scheduler address: %w", err)
	}
	u.Path = ""
	return u.String(), nil
}

// Close tears down the subscription.
func (v *Viewer) Close() error {
	return v.conn.Close(websocket.StatusNormalClosure, "")
}

// Recv blocks for the next stream frame: a notification, a close, or a
// viewport update.
func (v *Viewer) Recv(ctx context.Context) (model.NotificationMessage, error) {
	var msg model.NotificationMessage
	if err := wsjson.Read(ctx, v.conn, &msg); err != nil {
		return model.NotificationMessage{}, fmt.Errorf("read scheduler frame: %w", err)
	}
	return msg, nil
}

// View sends a viewport operation for this viewer: select, next, prev,
// dismiss, show_head, show_tail or scroll_down.
func (v *Viewer) View(ctx context.Context, op string, id uint32) error {
	return v.ViewFor(ctx, v.clientID, op, id)
}

// Dismiss reports a user dismissal of the notification.
func (c *Client) Dismiss(ctx context.Context, id uint32, uuid string) error {
	return c.post(ctx, "/api/notification_closed", map[string]any{
		"id":     id,
		"uuid":   uuid,
		"reason": uint32(model.ReasonDismissedByUser),
	})
}

// InvokeAction reports a button click.
func (c *Client) InvokeAction(ctx context.Context, id uint32, uuid, actionKey, activationToken string) error {
	return c.post(ctx, "/api/action_invoked", map[string]any{
		"id":               id,
		"uuid":             uuid,
		"action_key":       actionKey,
		"activation_token": activationToken,
	})
}

// ViewFor sends a viewport operation for the named viewer.
func (c *Client) ViewFor(ctx context.Context, clientID, op string, id uint32) error {
	return c.post(ctx, "/api/view", map[string]any{
		"client_id": clientID,
		"op":        op,
		"id":        id,
	})
}

// Pause toggles expiry timers for every notification on the scheduler.
func (c *Client) Pause(ctx context.Context, paused bool) error {
	return c.post(ctx, "/api/pause", map[string]any{"paused": paused})
}

// Forget discards the scheduler's saved view state for the client id, so
// its next registration starts from defaults.
func (c *Client) Forget(ctx context.Context, clientID string) error {
	target := c.base + "/api/viewport?client_id=" + url.QueryEscape(clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
