package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mox-desktop/moxnotify/internal/bus"
	mocks "github.com/mox-desktop/moxnotify/internal/mocks/scheduler"
	"github.com/mox-desktop/moxnotify/internal/model"
	"github.com/mox-desktop/moxnotify/internal/scheduler"
)

func newService(t *testing.T) (*scheduler.Service, *mocks.MocklifecycleBus) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	b := mocks.NewMocklifecycleBus(ctrl)
	store := mocks.NewMockstateStore(ctrl)

	timeouts := scheduler.Timeouts{Low: 5 * time.Second, Normal: 10 * time.Second}
	return scheduler.New(b, store, timeouts), b
}

func TestService_NotificationClosed_AppendsDurably(t *testing.T) {
	s, b := newService(t)

	expected := model.NotificationClosed{ID: 1, UUID: "u", Reason: model.ReasonDismissedByUser}
	b.EXPECT().Append(gomock.Any(), bus.StreamNotificationClosed, bus.FieldNotification, expected).Return(nil)

	require.NoError(t, s.NotificationClosed(context.Background(), expected))
}

func TestService_NotificationClosed_NormalizesReason(t *testing.T) {
	s, b := newService(t)

	expected := model.NotificationClosed{ID: 1, UUID: "u", Reason: model.ReasonUnknown}
	b.EXPECT().Append(gomock.Any(), bus.StreamNotificationClosed, bus.FieldNotification, expected).Return(nil)

	require.NoError(t, s.NotificationClosed(context.Background(), model.NotificationClosed{
		ID: 1, UUID: "u", Reason: model.CloseReason(99),
	}))
}

func TestService_NotificationClosed_AppendFailure(t *testing.T) {
	s, b := newService(t)

	b.EXPECT().Append(gomock.Any(), bus.StreamNotificationClosed, bus.FieldNotification, gomock.Any()).Return(assert.AnError)

	err := s.NotificationClosed(context.Background(), model.NotificationClosed{ID: 1, UUID: "u", Reason: model.ReasonExpired})
	assert.Error(t, err)
}

func TestService_ActionInvoked(t *testing.T) {
	s, b := newService(t)

	ev := model.ActionInvoked{ID: 2, UUID: "u", ActionKey: "reply"}
	b.EXPECT().Append(gomock.Any(), bus.StreamActionInvoked, bus.FieldAction, ev).Return(nil)

	require.NoError(t, s.ActionInvoked(context.Background(), ev))
}

func TestService_ViewportUnknownViewer(t *testing.T) {
	s, _ := newService(t)

	_, err := s.Viewport("nobody")
	assert.ErrorIs(t, err, scheduler.ErrUnknownViewer)

	err = s.ViewOp("nobody", scheduler.ViewOp{Op: "next"})
	assert.ErrorIs(t, err, scheduler.ErrUnknownViewer)
}

func TestService_ForgetDeletesSavedState(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	b := mocks.NewMocklifecycleBus(ctrl)
	store := mocks.NewMockstateStore(ctrl)
	store.EXPECT().Delete(gomock.Any(), "viewer-1")

	s := scheduler.New(b, store, scheduler.Timeouts{})
	s.Forget(context.Background(), "viewer-1")
}

func TestService_RunCreatesGroups(t *testing.T) {
	s, b := newService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	b.EXPECT().EnsureGroup(gomock.Any(), bus.StreamNotify, bus.GroupScheduler).Return(nil)
	b.EXPECT().EnsureGroup(gomock.Any(), bus.StreamCloseNotification, bus.GroupScheduler).Return(nil)
	b.EXPECT().Consume(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	require.NoError(t, s.Run(ctx))
}

func TestService_RunGroupFailureIsFatal(t *testing.T) {
	s, b := newService(t)

	b.EXPECT().EnsureGroup(gomock.Any(), bus.StreamNotify, bus.GroupScheduler).Return(assert.AnError)

	assert.Error(t, s.Run(context.Background()))
}
