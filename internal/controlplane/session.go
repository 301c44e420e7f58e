package controlplane

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/bus"
	"github.com/mox-desktop/moxnotify/internal/model"
)

const sessionWriteTimeout = 5 * time.Second

// HandleSession upgrades a collector connection and runs it until either
// side goes away. Each session owns two tasks: a reader moving collector
// events onto the streams, and a fan-out subscriber pushing lifecycle
// events back. A write failure tears down only this session.
func (s *Service) HandleSession(c *ginext.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to accept collector session")
		return
	}

	remote := c.Request.RemoteAddr
	zlog.Logger.Info().Str("remote", remote).Msg("collector connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	defer conn.Close(websocket.StatusNormalClosure, "")

	go s.fanOut(ctx, cancel, conn, remote)
	s.readLoop(ctx, conn, remote)
	cancel()

	zlog.Logger.Info().Str("remote", remote).Msg("collector disconnected")
}

func (s *Service) readLoop(ctx context.Context, conn *websocket.Conn, remote string) {
	for {
		var msg model.CollectorMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				zlog.Logger.Warn().Err(err).Str("remote", remote).Msg("collector session read failed")
			}
			return
		}

		switch {
		case msg.NewNotification != nil:
			if err := s.HandleNew(ctx, msg.NewNotification); err != nil {
				zlog.Logger.Error().Err(err).Str("remote", remote).Msg("failed to ingest notification")
				return
			}
		case msg.CloseNotification != nil:
			if err := s.HandleClose(ctx, msg.CloseNotification); err != nil {
				zlog.Logger.Error().Err(err).Str("remote", remote).Msg("failed to ingest close")
				return
			}
		default:
			zlog.Logger.Warn().Str("remote", remote).Msg("empty collector message, skipping")
		}
	}
}

// fanOut forwards every lifecycle event unfiltered; matching uuids is
// the collector's responsibility.
func (s *Service) fanOut(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, remote string) {
	defer cancel()

	events, stop := s.bus.SubscribeEvents(ctx, bus.ChannelNotificationClosed, bus.ChannelActionInvoked)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			frame, ok := frameFor(ev)
			if !ok {
				continue
			}

			writeCtx, done := context.WithTimeout(ctx, sessionWriteTimeout)
			err := wsjson.Write(writeCtx, conn, frame)
			done()
			if err != nil {
				if ctx.Err() == nil {
					zlog.Logger.Warn().Err(err).Str("remote", remote).Msg("collector session write failed, closing")
				}
				return
			}
		}
	}
}

func frameFor(ev bus.Event) (model.ControlPlaneMessage, bool) {
	switch ev.Channel {
	case bus.ChannelNotificationClosed:
		var closed model.NotificationClosed
		if err := json.Unmarshal(ev.Payload, &closed); err != nil {
			zlog.Logger.Warn().Err(err).Msg("unparseable notification_closed event, dropping")
			return model.ControlPlaneMessage{}, false
		}
		return model.ControlPlaneMessage{NotificationClosed: &closed}, true
	case bus.ChannelActionInvoked:
		var action model.ActionInvoked
		if err := json.Unmarshal(ev.Payload, &action); err != nil {
			zlog.Logger.Warn().Err(err).Msg("unparseable action_invoked event, dropping")
			return model.ControlPlaneMessage{}, false
		}
		return model.ControlPlaneMessage{ActionInvoked: &action}, true
	}
	return model.ControlPlaneMessage{}, false
}

// HandleActive serves the active hash for late joiners.
func (s *Service) HandleActive(c *ginext.Context) {
	active, err := s.Active(c.Request.Context())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to load active notifications")
		c.String(http.StatusInternalServerError, "failed to load active notifications")
		return
	}
	c.JSON(http.StatusOK, active)
}
