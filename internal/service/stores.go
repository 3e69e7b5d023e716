package service

import (
	"context"
	"time"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

// Store interfaces are satisfied by the pgx repositories and faked in tests.

type UserStore interface {
	Create(ctx context.Context, user models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash []byte) error
	TouchLastLogin(ctx context.Context, id int64) error
	ListActiveByRoles(ctx context.Context, roles []string) ([]models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type AuditStore interface {
	Record(ctx context.Context, entry models.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error)
	Count(ctx context.Context) (int64, error)
}

type SurveyStore interface {
	Create(ctx context.Context, survey models.Survey) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Survey, error)
	List(ctx context.Context, filter models.SurveyFilter, limit, offset int) ([]models.Survey, error)
	Count(ctx context.Context, filter models.SurveyFilter) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type DepartmentStore interface {
	ListActive(ctx context.Context) ([]models.Department, error)
	GetActiveByName(ctx context.Context, name string) (models.Department, error)
	Create(ctx context.Context, dept models.Department) (int64, error)
	Update(ctx context.Context, dept models.Department) error
}

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) (int64, error)
	CreateForUsers(ctx context.Context, userIDs []int64, kind models.NotificationKind, title, body string) error
	ListUnread(ctx context.Context, userID int64) ([]models.Notification, error)
	ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Notification, error)
	ListHistory(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type StatsStore interface {
	Overall(ctx context.Context) (models.SatisfactionStats, error)
	OverallBetween(ctx context.Context, from, to time.Time) (models.SatisfactionStats, error)
	ByDepartment(ctx context.Context) ([]models.DepartmentStats, error)
	ByReason(ctx context.Context) ([]models.ReasonStats, error)
	Monthly(ctx context.Context, months int) ([]models.MonthlyStats, error)
}
