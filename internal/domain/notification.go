package domain

import "time"

type NotificationKind string

const (
	NotificationError   NotificationKind = "error"
	NotificationSuccess NotificationKind = "success"
	NotificationWarning NotificationKind = "warning"
)

type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"type"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}
