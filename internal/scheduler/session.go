package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/model"
)

const viewerWriteTimeout = 5 * time.Second

// ViewOp is one viewer input routed through the unary view endpoint.
type ViewOp struct {
	Op string `json:"op" validate:"required,oneof=select next prev dismiss show_head show_tail scroll_down"`
	ID uint32 `json:"id,omitempty"`
}

type sessionEvent struct {
	notification *model.Notification
	close        *model.CloseNotification
	op           *ViewOp
}

// viewerSession is one connected viewer. The session task exclusively
// owns the view state machine; other goroutines reach it through the
// bounded events channel or the read-only viewportState accessor.
type viewerSession struct {
	clientID string
	history  bool

	events chan sessionEvent
	done   chan struct{}
	lagged atomic.Uint64

	stateMu sync.Mutex
	state   *ViewState
	ids     []uint32
	uuids   map[uint32]string
}

func newViewerSession(clientID string, history bool, state *ViewState) *viewerSession {
	return &viewerSession{
		clientID: clientID,
		history:  history,
		events:   make(chan sessionEvent, 128),
		done:     make(chan struct{}),
		state:    state,
		uuids:    make(map[uint32]string),
	}
}

func (v *viewerSession) viewportState() ViewportState {
	v.stateMu.Lock()
	defer v.stateMu.Unlock()

	state := ViewportState{
		RangeStart:     v.state.Range.Start,
		RangeEnd:       v.state.Range.End,
		MaxVisible:     v.state.Range.MaxVisible,
		PrevVisibleIDs: append([]uint32(nil), v.state.PrevVisible...),
	}
	if id, ok := v.state.SelectedID(); ok {
		state.SelectedID = &id
	}
	return state
}

// run drives the session until the transport closes or the viewer is
// replaced by a reconnect with the same client id.
func (v *viewerSession) run(ctx context.Context, s *Service, conn *websocket.Conn) {
	defer s.unregister(v)

	// Late joiner reconciliation: replay the live list, then the
	// initial viewport.
	for _, n := range s.snapshot() {
		v.trackNew(n)
		if !v.send(ctx, conn, model.NotificationMessage{Notification: &n}) {
			return
		}
	}
	if update, changed := v.refresh(); changed {
		if !v.send(ctx, conn, model.NotificationMessage{Viewport: update}) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.done:
			return
		case ev := <-v.events:
			if !v.handle(ctx, s, conn, ev) {
				return
			}
		}
	}
}

func (v *viewerSession) handle(ctx context.Context, s *Service, conn *websocket.Conn, ev sessionEvent) bool {
	switch {
	case ev.notification != nil:
		v.trackNew(*ev.notification)
		if !v.send(ctx, conn, model.NotificationMessage{Notification: ev.notification}) {
			return false
		}
	case ev.close != nil:
		if !v.trackClose(ev.close.ID) {
			return true
		}
		if !v.send(ctx, conn, model.NotificationMessage{CloseNotification: ev.close}) {
			return false
		}
	case ev.op != nil:
		v.applyOp(ctx, s, *ev.op)
	default:
		return true
	}

	if update, changed := v.refresh(); changed {
		s.saveState(ctx, v)
		if !v.send(ctx, conn, model.NotificationMessage{Viewport: update}) {
			return false
		}
	}
	return true
}

// trackNew inserts the notification into this viewer's ordering:
// newest-first in history mode, appended otherwise. A redelivered
// (id, uuid) keeps its position.
func (v *viewerSession) trackNew(n model.Notification) {
	v.stateMu.Lock()
	defer v.stateMu.Unlock()

	if _, ok := v.uuids[n.ID]; ok {
		v.uuids[n.ID] = n.UUID
		return
	}

	v.uuids[n.ID] = n.UUID
	if v.history {
		v.ids = append([]uint32{n.ID}, v.ids...)
	} else {
		v.ids = append(v.ids, n.ID)
	}
}

// trackClose removes the id and fixes up selection and window. Returns
// false when the id was never tracked (close-before-new, already
// dismissed locally).
func (v *viewerSession) trackClose(id uint32) bool {
	v.stateMu.Lock()
	defer v.stateMu.Unlock()

	idx, ok := indexOf(v.ids, id)
	if !ok {
		return false
	}

	v.ids = append(v.ids[:idx], v.ids[idx+1:]...)
	delete(v.uuids, id)
	v.state.Dismiss(v.ids, id, idx)
	return true
}

func (v *viewerSession) applyOp(ctx context.Context, s *Service, op ViewOp) {
	v.stateMu.Lock()
	switch op.Op {
	case "select":
		v.state.Select(v.ids, op.ID)
	case "next":
		v.state.Next(v.ids)
	case "prev":
		v.state.Prev(v.ids)
	case "show_head":
		v.state.Range.ShowHead()
	case "show_tail":
		v.state.Range.ShowTail(len(v.ids))
	case "scroll_down":
		v.state.Range.ScrollDownClamped(len(v.ids))
	case "dismiss":
		uuid := v.uuids[op.ID]
		v.stateMu.Unlock()
		v.dismiss(ctx, s, op.ID, uuid)
		return
	}
	v.stateMu.Unlock()
}

// dismiss reports the user action durably, then applies the removal
// locally without waiting for the broadcast to come back around.
func (v *viewerSession) dismiss(ctx context.Context, s *Service, id uint32, uuid string) {
	ev := model.NotificationClosed{ID: id, UUID: uuid, Reason: model.ReasonDismissedByUser}
	if err := s.NotificationClosed(ctx, ev); err != nil {
		zlog.Logger.Error().Err(err).Uint32("id", id).Str("client", v.clientID).Msg("failed to record dismissal")
		return
	}
	v.trackClose(id)
}

// refresh recomputes the viewport, reporting a change at most once per
// distinct visible id set.
func (v *viewerSession) refresh() (*model.ViewportUpdate, bool) {
	v.stateMu.Lock()
	defer v.stateMu.Unlock()
	return v.state.Update(v.ids)
}

func (v *viewerSession) send(ctx context.Context, conn *websocket.Conn, msg model.NotificationMessage) bool {
	writeCtx, done := context.WithTimeout(ctx, viewerWriteTimeout)
	err := wsjson.Write(writeCtx, conn, msg)
	done()
	if err != nil {
		if ctx.Err() == nil {
			zlog.Logger.Warn().Err(err).Str("client", v.clientID).Msg("viewer write failed, closing session")
		}
		return false
	}
	return true
}

func (s *Service) saveState(ctx context.Context, v *viewerSession) {
	v.stateMu.Lock()
	state := v.state
	v.stateMu.Unlock()
	s.store.Save(ctx, v.clientID, state)
}
