package controlplane

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mox-desktop/moxnotify/internal/bus"
	mocks "github.com/mox-desktop/moxnotify/internal/mocks/controlplane"
	"github.com/mox-desktop/moxnotify/internal/model"
)

func TestService_HandleNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	n := &model.Notification{ID: 1, UUID: "u", AppName: "app", Summary: "hi"}

	b.EXPECT().Append(gomock.Any(), bus.StreamNotify, bus.FieldNotification, n).Return(nil)
	b.EXPECT().SetActive(gomock.Any(), uint32(1), n).Return(nil)
	b.EXPECT().Publish(gomock.Any(), bus.ChannelNotification, n).Return(nil)

	require.NoError(t, s.HandleNew(context.Background(), n))
}

func TestService_HandleNew_AppendFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	n := &model.Notification{ID: 1, UUID: "u"}

	b.EXPECT().Append(gomock.Any(), bus.StreamNotify, bus.FieldNotification, n).Return(assert.AnError)

	// No SetActive or Publish after a failed append.
	assert.Error(t, s.HandleNew(context.Background(), n))
}

func TestService_HandleNew_PublishFailureIsTolerated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	n := &model.Notification{ID: 1, UUID: "u"}

	b.EXPECT().Append(gomock.Any(), bus.StreamNotify, bus.FieldNotification, n).Return(nil)
	b.EXPECT().SetActive(gomock.Any(), uint32(1), n).Return(nil)
	b.EXPECT().Publish(gomock.Any(), bus.ChannelNotification, n).Return(assert.AnError)

	// The stream is the source of truth; a missed pub/sub delivery is
	// not an ingest failure.
	require.NoError(t, s.HandleNew(context.Background(), n))
}

func TestService_HandleClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	c := &model.CloseNotification{ID: 2, UUID: "u"}

	b.EXPECT().Append(gomock.Any(), bus.StreamCloseNotification, bus.FieldCloseNotification, c).Return(nil)
	b.EXPECT().RemoveActive(gomock.Any(), uint32(2)).Return(nil)

	require.NoError(t, s.HandleClose(context.Background(), c))
}

func TestService_RepublishClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	ev := model.NotificationClosed{ID: 3, UUID: "u", Reason: model.ReasonExpired}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	b.EXPECT().Publish(gomock.Any(), bus.ChannelNotificationClosed, ev).Return(nil)

	require.NoError(t, s.republishClosed(context.Background(), payload))
}

func TestService_RepublishClosed_NormalizesReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	payload := []byte(`{"id":3,"uuid":"u","reason":99}`)

	expected := model.NotificationClosed{ID: 3, UUID: "u", Reason: model.ReasonUnknown}
	b.EXPECT().Publish(gomock.Any(), bus.ChannelNotificationClosed, expected).Return(nil)

	require.NoError(t, s.republishClosed(context.Background(), payload))
}

func TestService_RepublishClosed_PublishFailureStillHandled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	ev := model.NotificationClosed{ID: 3, UUID: "u", Reason: model.ReasonExpired}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	b.EXPECT().Publish(gomock.Any(), bus.ChannelNotificationClosed, ev).Return(assert.AnError)

	// A nil return acks the record; pub/sub is best effort.
	require.NoError(t, s.republishClosed(context.Background(), payload))
}

func TestService_RepublishAction_BadPayloadSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	// No Publish call for garbage.
	require.NoError(t, s.republishAction(context.Background(), []byte("{broken")))
}

func TestService_Active(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mocks.NewMockeventBus(ctrl)
	s := New(b)

	n := model.Notification{ID: 1, UUID: "u", Summary: "live"}
	body, err := json.Marshal(n)
	require.NoError(t, err)

	b.EXPECT().ActiveAll(gomock.Any()).Return(map[string]string{
		"1":   string(body),
		"bad": "{broken",
	}, nil)

	active, err := s.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, n, active[0])
}
