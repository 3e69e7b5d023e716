package models

import (
	"time"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
)

// User is an administrative account. Accounts are never hard-deleted;
// deactivation clears the Active flag and the auth gate rejects the account on
// its next request.
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	LastName     string
	FirstName    string
	Email        *string
	Role         authz.Role
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a server-side login record keyed by an opaque identifier.
// Expiry is checked on every lookup; rows are purged lazily or by the
// scheduler.
type Session struct {
	ID        string
	UserID    int64
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given
// instant. A session is live strictly before ExpiresAt and dead from that
// instant on, the same predicate the store applies (expires_at > NOW()).
func (s Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(at)
}
