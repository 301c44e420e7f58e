package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/bus"
	"github.com/mox-desktop/moxnotify/internal/model"
)

// ErrUnknownViewer is returned for operations on a client id with no
// live session.
var ErrUnknownViewer = errors.New("unknown viewer")

//go:generate mockgen -source=service.go -destination=../mocks/scheduler/mock.go -package=mocks

// lifecycleBus is the slice of the bus the scheduler uses.
type lifecycleBus interface {
	Append(ctx context.Context, stream, field string, payload any) error
	EnsureGroup(ctx context.Context, stream, group string) error
	Consume(ctx context.Context, stream, field, group, consumer string, fn func(ctx context.Context, payload []byte) error)
}

// stateStore persists per-viewer view state across reconnects.
type stateStore interface {
	Load(ctx context.Context, clientID string, maxVisible int) *ViewState
	Save(ctx context.Context, clientID string, state *ViewState)
	Delete(ctx context.Context, clientID string)
}

// Service consumes the notification streams, owns the live list, and
// pushes viewer-scoped updates to every registered viewer.
type Service struct {
	bus      lifecycleBus
	store    stateStore
	timeouts *TimeoutScheduler

	low, normal, critical time.Duration

	mu      sync.Mutex
	live    []model.Notification
	viewers map[string]*viewerSession
}

// Timeouts are the urgency-default expiries; zero means never.
type Timeouts struct {
	Low      time.Duration
	Normal   time.Duration
	Critical time.Duration
}

func New(b lifecycleBus, store stateStore, timeouts Timeouts) *Service {
	return &Service{
		bus:      b,
		store:    store,
		timeouts: NewTimeoutScheduler(),
		low:      timeouts.Low,
		normal:   timeouts.Normal,
		critical: timeouts.Critical,
		viewers:  make(map[string]*viewerSession),
	}
}

// Run creates the consumer groups and drives the stream consumers and
// the expiry pipeline until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	for _, stream := range []string{bus.StreamNotify, bus.StreamCloseNotification} {
		if err := s.bus.EnsureGroup(ctx, stream, bus.GroupScheduler); err != nil {
			return err
		}
	}

	go s.bus.Consume(ctx, bus.StreamNotify, bus.FieldNotification, bus.GroupScheduler, "scheduler-1", s.onNewPayload)
	go s.bus.Consume(ctx, bus.StreamCloseNotification, bus.FieldCloseNotification, bus.GroupScheduler, "scheduler-1", s.onClosePayload)
	go s.expiryLoop(ctx)

	<-ctx.Done()
	return nil
}

func (s *Service) onNewPayload(ctx context.Context, payload []byte) error {
	var n model.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		zlog.Logger.Warn().Err(err).Msg("unparseable notification record")
		return nil
	}
	s.addNotification(n)
	return nil
}

func (s *Service) onClosePayload(ctx context.Context, payload []byte) error {
	var c model.CloseNotification
	if err := json.Unmarshal(payload, &c); err != nil {
		zlog.Logger.Warn().Err(err).Msg("unparseable close_notification record")
		return nil
	}
	s.removeNotification(c.ID, c.UUID)
	return nil
}

func (s *Service) addNotification(n model.Notification) {
	s.mu.Lock()
	// Duplicate delivery of the same (id, uuid) replaces in place.
	replaced := false
	for i := range s.live {
		if s.live[i].ID == n.ID && s.live[i].UUID == n.UUID {
			s.live[i] = n
			replaced = true
			break
		}
	}
	if !replaced {
		s.live = append(s.live, n)
	}
	s.mu.Unlock()

	if d := n.ExpiryDuration(s.low, s.normal, s.critical); d > 0 {
		s.timeouts.Start(n.ID, n.UUID, d)
	}

	s.broadcast(sessionEvent{notification: &n})
}

// removeNotification drops (id, uuid) from the live list and tells the
// viewers. A close for an id that never arrived is dropped on the
// floor; late joiners see those regularly.
func (s *Service) removeNotification(id uint32, uuid string) {
	s.timeouts.Stop(id)

	s.mu.Lock()
	found := false
	for i := range s.live {
		if s.live[i].ID == id && (uuid == "" || s.live[i].UUID == uuid) {
			s.live = append(s.live[:i], s.live[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		zlog.Logger.Debug().Uint32("id", id).Str("uuid", uuid).Msg("close for unknown notification, dropping")
		return
	}

	s.broadcast(sessionEvent{close: &model.CloseNotification{ID: id, UUID: uuid}})
}

func (s *Service) expiryLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fired := <-s.timeouts.Fired():
			ev := model.NotificationClosed{ID: fired.ID, UUID: fired.UUID, Reason: model.ReasonExpired}
			if err := s.bus.Append(ctx, bus.StreamNotificationClosed, bus.FieldNotification, ev); err != nil {
				zlog.Logger.Error().Err(err).Uint32("id", fired.ID).Msg("failed to append expiry event")
			}
			s.removeNotification(fired.ID, fired.UUID)
		}
	}
}

// NotificationClosed records a viewer-reported close: durable append
// first, then local removal. It never waits for viewer fan-out.
func (s *Service) NotificationClosed(ctx context.Context, ev model.NotificationClosed) error {
	ev.Reason = model.NormalizeReason(uint32(ev.Reason))
	if err := s.bus.Append(ctx, bus.StreamNotificationClosed, bus.FieldNotification, ev); err != nil {
		return err
	}
	s.removeNotification(ev.ID, ev.UUID)
	return nil
}

// ActionInvoked records a button click for fan-out to collectors.
func (s *Service) ActionInvoked(ctx context.Context, ev model.ActionInvoked) error {
	return s.bus.Append(ctx, bus.StreamActionInvoked, bus.FieldAction, ev)
}

// SetPaused toggles the global expiry pause.
func (s *Service) SetPaused(paused bool) {
	s.timeouts.SetPaused(paused)
}

// snapshot returns the current live list.
func (s *Service) snapshot() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.live))
	copy(out, s.live)
	return out
}

func (s *Service) register(v *viewerSession) {
	s.mu.Lock()
	if old, ok := s.viewers[v.clientID]; ok {
		close(old.done)
	}
	s.viewers[v.clientID] = v
	s.mu.Unlock()
}

func (s *Service) unregister(v *viewerSession) {
	s.mu.Lock()
	if current, ok := s.viewers[v.clientID]; ok && current == v {
		delete(s.viewers, v.clientID)
	}
	s.mu.Unlock()
}

// broadcast fans an event to every viewer without ever blocking on a
// slow one; overflow is logged with the skipped count and the viewer
// reconciles later through GetViewport.
func (s *Service) broadcast(ev sessionEvent) {
	s.mu.Lock()
	viewers := make([]*viewerSession, 0, len(s.viewers))
	for _, v := range s.viewers {
		viewers = append(viewers, v)
	}
	s.mu.Unlock()

	for _, v := range viewers {
		select {
		case v.events <- ev:
			if skipped := v.lagged.Swap(0); skipped > 0 {
				zlog.Logger.Warn().Str("client", v.clientID).Uint64("skipped", skipped).Msg("viewer lagged")
			}
		default:
			v.lagged.Add(1)
		}
	}
}

// Viewport returns the current view state for a client.
func (s *Service) Viewport(clientID string) (ViewportState, error) {
	s.mu.Lock()
	v, ok := s.viewers[clientID]
	s.mu.Unlock()
	if !ok {
		return ViewportState{}, ErrUnknownViewer
	}
	return v.viewportState(), nil
}

// ViewOp queues a view operation onto the owning viewer task.
func (s *Service) ViewOp(clientID string, op ViewOp) error {
	s.mu.Lock()
	v, ok := s.viewers[clientID]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownViewer
	}

	select {
	case v.events <- sessionEvent{op: &op}:
		return nil
	default:
		v.lagged.Add(1)
		return errors.New("viewer event queue full")
	}
}

// Forget drops the persisted view state for a client id so its next
// registration starts from defaults. A live session keeps its in-memory
// state until it disconnects.
func (s *Service) Forget(ctx context.Context, clientID string) {
	s.store.Delete(ctx, clientID)
}

// ViewportState is the unary GetViewport reply.
type ViewportState struct {
	SelectedID     *uint32  `json:"selected_id,omitempty"`
	RangeStart     int      `json:"range_start"`
	RangeEnd       int      `json:"range_end"`
	MaxVisible     int      `json:"max_visible"`
	PrevVisibleIDs []uint32 `json:"prev_visible_ids"`
}
