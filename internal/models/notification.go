package models

import "time"

type NotificationKind string

const (
	NotificationDissatisfied NotificationKind = "dissatisfied_survey"
	NotificationManual       NotificationKind = "manual"
)

// Notification is a per-user dashboard alert, polled by the frontend.
type Notification struct {
	ID        int64
	UserID    int64
	Kind      NotificationKind
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}
