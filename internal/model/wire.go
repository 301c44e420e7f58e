package model

// CollectorMessage is one frame on the collector -> control-plane
// session. Exactly one field is set.
type CollectorMessage struct {
	NewNotification   *Notification      `json:"new_notification,omitempty"`
	CloseNotification *CloseNotification `json:"close_notification,omitempty"`
}

// ControlPlaneMessage is one frame fanned out to every collector
// session. Filtering by uuid is the collector's job.
type ControlPlaneMessage struct {
	NotificationClosed *NotificationClosed `json:"notification_closed,omitempty"`
	ActionInvoked      *ActionInvoked      `json:"action_invoked,omitempty"`
}

// ClientNotifyRequest registers a viewer on the scheduler stream.
// ClientID is optional; when empty the scheduler derives one from the
// transport peer, which does not survive reconnects.
type ClientNotifyRequest struct {
	ClientID   string `json:"client_id,omitempty"`
	MaxVisible int    `json:"max_visible"`
	History    bool   `json:"history"`
}

// ViewportUpdate tells a viewer which slice of the live list to render.
// It is sent only when the visible id set changed.
type ViewportUpdate struct {
	VisibleIDs  []uint32 `json:"visible_ids"`
	BeforeCount int      `json:"before_count"`
	AfterCount  int      `json:"after_count"`
	SelectedID  *uint32  `json:"selected_id,omitempty"`
}

// NotificationMessage is one frame on the scheduler -> viewer stream.
// Exactly one field is set.
type NotificationMessage struct {
	Notification      *Notification      `json:"notification,omitempty"`
	CloseNotification *CloseNotification `json:"close_notification,omitempty"`
	Viewport          *ViewportUpdate    `json:"viewport,omitempty"`
}
