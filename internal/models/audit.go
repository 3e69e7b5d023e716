package models

import "time"

// AuditEntry records an administrative action. Entries are append-only and
// written best-effort: a failed insert is logged but never fails the request.
type AuditEntry struct {
	ID        int64
	UserID    int64
	Action    string
	Details   string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	Username  string
}
