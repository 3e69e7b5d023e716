package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

// Auditor records administrative actions. Writes are best-effort: a failed
// insert is logged and dropped, never propagated to the caller.
type Auditor struct {
	store AuditStore
	log   zerolog.Logger
}

func NewAuditor(store AuditStore, log zerolog.Logger) *Auditor {
	return &Auditor{store: store, log: log}
}

// Record writes one activity-log row. A zero userID means the action was
// performed by the privileged identity, which has no user row to attribute
// the entry to, so it is skipped.
func (a *Auditor) Record(ctx context.Context, userID int64, action, details, ip, userAgent string) {
	if userID == 0 {
		return
	}
	entry := models.AuditEntry{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := a.store.Record(ctx, entry); err != nil {
		a.log.Warn().Err(err).Str("action", action).Int64("user_id", userID).Msg("audit record failed")
	}
}

// List returns a page of activity-log entries with the total count.
func (a *Auditor) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := a.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
