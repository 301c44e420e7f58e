package model

import "time"

// Urgency levels as defined by the freedesktop notification spec.
type Urgency uint8

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// CloseReason explains why a notification left the screen.
type CloseReason uint32

const (
	ReasonExpired               CloseReason = 1
	ReasonDismissedByUser       CloseReason = 2
	ReasonCloseNotificationCall CloseReason = 3
	ReasonUnknown               CloseReason = 4
)

func (r CloseReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonDismissedByUser:
		return "dismissed"
	case ReasonCloseNotificationCall:
		return "close-call"
	default:
		return "unknown"
	}
}

// NormalizeReason maps anything outside the defined range to ReasonUnknown.
func NormalizeReason(raw uint32) CloseReason {
	r := CloseReason(raw)
	switch r {
	case ReasonExpired, ReasonDismissedByUser, ReasonCloseNotificationCall:
		return r
	default:
		return ReasonUnknown
	}
}

// ImageData carries a raw RGBA bitmap as delivered over the bus.
type ImageData struct {
	Width     int32  `json:"width"`
	Height    int32  `json:"height"`
	Rowstride int32  `json:"rowstride"`
	HasAlpha  bool   `json:"has_alpha"`
	Data      []byte `json:"data"`
}

// Image is one of a named icon, a file path, or raw pixel data.
// At most one field is set.
type Image struct {
	Name string     `json:"name,omitempty"`
	Path string     `json:"path,omitempty"`
	Data *ImageData `json:"data,omitempty"`
}

// Hints is the freedesktop hints bag attached to a notification.
type Hints struct {
	Urgency       Urgency `json:"urgency"`
	Category      string  `json:"category,omitempty"`
	DesktopEntry  string  `json:"desktop_entry,omitempty"`
	Value         *int32  `json:"value,omitempty"` // progress, 0..100
	Image         *Image  `json:"image,omitempty"`
	SoundFile     string  `json:"sound_file,omitempty"`
	SoundName     string  `json:"sound_name,omitempty"`
	Resident      bool    `json:"resident"`
	Transient     bool    `json:"transient"`
	SuppressSound bool    `json:"suppress_sound"`
	ActionIcons   bool    `json:"action_icons"`
	X             int32   `json:"x"`
	Y             *int32  `json:"y,omitempty"`
}

// Action is one clickable button: the key goes back to the application,
// the label is what the viewer renders.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Notification is the bus payload for a new notification. Identity is the
// pair (ID, UUID): ID is assigned by the originating collector and may be
// reused across its restarts, UUID disambiguates the collector instance.
type Notification struct {
	ID        uint32   `json:"id"`
	UUID      string   `json:"uuid"`
	AppName   string   `json:"app_name"`
	AppIcon   string   `json:"app_icon,omitempty"`
	Summary   string   `json:"summary"`
	Body      string   `json:"body"`
	Timeout   int32    `json:"timeout"` // ms; -1 = default, 0 = sticky
	Actions   []Action `json:"actions,omitempty"`
	Timestamp int64    `json:"timestamp"` // ms since epoch
	Hints     Hints    `json:"hints"`
}

// Sticky reports whether the notification never expires on its own.
func (n Notification) Sticky() bool {
	return n.Timeout == 0
}

// ExpiryDuration resolves the effective lifetime of the notification.
// An explicit positive timeout wins; -1 falls back to the urgency default.
// A zero return means the notification never expires.
func (n Notification) ExpiryDuration(low, normal, critical time.Duration) time.Duration {
	if n.Timeout > 0 {
		return time.Duration(n.Timeout) * time.Millisecond
	}
	if n.Timeout == 0 {
		return 0
	}
	switch n.Hints.Urgency {
	case UrgencyLow:
		return low
	case UrgencyCritical:
		return critical
	default:
		return normal
	}
}

// CloseNotification is an application's request to take a notification down.
type CloseNotification struct {
	ID   uint32 `json:"id"`
	UUID string `json:"uuid"`
}

// NotificationClosed reports that a notification left the screen.
type NotificationClosed struct {
	ID     uint32      `json:"id"`
	UUID   string      `json:"uuid"`
	Reason CloseReason `json:"reason"`
}

// ActionInvoked reports a button click on a viewer.
type ActionInvoked struct {
	ID              uint32 `json:"id"`
	UUID            string `json:"uuid"`
	ActionKey       string `json:"action_key"`
	ActivationToken string `json:"activation_token,omitempty"`
}
