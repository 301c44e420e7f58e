package controlplane

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/bus"
	"github.com/mox-desktop/moxnotify/internal/model"
)

//go:generate mockgen -source=service.go -destination=../mocks/controlplane/mock.go -package=mocks

// eventBus is the slice of the bus the control plane uses.
type eventBus interface {
	Append(ctx context.Context, stream, field string, payload any) error
	Publish(ctx context.Context, channel string, payload any) error
	SetActive(ctx context.Context, id uint32, payload any) error
	RemoveActive(ctx context.Context, id uint32) error
	ActiveAll(ctx context.Context) (map[string]string, error)
	EnsureGroup(ctx context.Context, stream, group string) error
	Consume(ctx context.Context, stream, field, group, consumer string, fn func(ctx context.Context, payload []byte) error)
	SubscribeEvents(ctx context.Context, channels ...string) (<-chan bus.Event, func())
}

// Service is the authoritative ingress: it multiplexes collector
// sessions onto the durable streams and fans lifecycle events back out.
type Service struct {
	bus eventBus
}

func New(b eventBus) *Service {
	return &Service{bus: b}
}

// Run creates the consumer group and drives the two re-publish loops
// until ctx is done. The loops turn durable lifecycle records into
// best-effort pub/sub messages; a failed publish is logged and the
// record acked anyway, because the stream stays the source of truth.
func (s *Service) Run(ctx context.Context) error {
	for _, stream := range []string{bus.StreamNotificationClosed, bus.StreamActionInvoked} {
		if err := s.bus.EnsureGroup(ctx, stream, bus.GroupControlPlane); err != nil {
			return err
		}
	}

	go s.bus.Consume(ctx, bus.StreamNotificationClosed, bus.FieldNotification, bus.GroupControlPlane, "control-plane-1", s.republishClosed)
	go s.bus.Consume(ctx, bus.StreamActionInvoked, bus.FieldAction, bus.GroupControlPlane, "control-plane-1", s.republishAction)

	<-ctx.Done()
	return nil
}

func (s *Service) republishClosed(ctx context.Context, payload []byte) error {
	var ev model.NotificationClosed
	if err := json.Unmarshal(payload, &ev); err != nil {
		zlog.Logger.Warn().Err(err).Msg("unparseable notification_closed record")
		return nil
	}
	ev.Reason = model.NormalizeReason(uint32(ev.Reason))

	if err := s.bus.Publish(ctx, bus.ChannelNotificationClosed, ev); err != nil {
		zlog.Logger.Warn().Err(err).Uint32("id", ev.ID).Msg("failed to re-publish notification_closed")
	}
	return nil
}

func (s *Service) republishAction(ctx context.Context, payload []byte) error {
	var ev model.ActionInvoked
	if err := json.Unmarshal(payload, &ev); err != nil {
		zlog.Logger.Warn().Err(err).Msg("unparseable action_invoked record")
		return nil
	}

	if err := s.bus.Publish(ctx, bus.ChannelActionInvoked, ev); err != nil {
		zlog.Logger.Warn().Err(err).Uint32("id", ev.ID).Msg("failed to re-publish action_invoked")
	}
	return nil
}

// HandleNew ingests one NewNotification from a collector: durable
// append, active-hash upsert, opportunistic pub/sub.
func (s *Service) HandleNew(ctx context.Context, n *model.Notification) error {
	if err := s.bus.Append(ctx, bus.StreamNotify, bus.FieldNotification, n); err != nil {
		return err
	}

	if err := s.bus.SetActive(ctx, n.ID, n); err != nil {
		zlog.Logger.Warn().Err(err).Uint32("id", n.ID).Msg("failed to update active hash")
	}
	if err := s.bus.Publish(ctx, bus.ChannelNotification, n); err != nil {
		zlog.Logger.Warn().Err(err).Uint32("id", n.ID).Msg("failed to publish notification")
	}

	zlog.Logger.Info().
		Uint32("id", n.ID).
		Str("uuid", n.UUID).
		Str("app_name", n.AppName).
		Str("summary", n.Summary).
		Str("urgency", n.Hints.Urgency.String()).
		Msg("notification received")
	return nil
}

// HandleClose ingests one CloseNotification from a collector.
func (s *Service) HandleClose(ctx context.Context, c *model.CloseNotification) error {
	if err := s.bus.Append(ctx, bus.StreamCloseNotification, bus.FieldCloseNotification, c); err != nil {
		return err
	}

	if err := s.bus.RemoveActive(ctx, c.ID); err != nil {
		zlog.Logger.Warn().Err(err).Uint32("id", c.ID).Msg("failed to remove active entry")
	}

	zlog.Logger.Info().Uint32("id", c.ID).Str("uuid", c.UUID).Msg("close requested")
	return nil
}

// Active returns the live notifications for late-joiner reconciliation.
func (s *Service) Active(ctx context.Context) ([]model.Notification, error) {
	raw, err := s.bus.ActiveAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Notification, 0, len(raw))
	for id, body := range raw {
		var n model.Notification
		if err := json.Unmarshal([]byte(body), &n); err != nil {
			zlog.Logger.Warn().Err(err).Str("id", id).Msg("unparseable active entry, skipping")
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
