package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) (int64, error) {
	const query = `
		INSERT INTO notifications (user_id, kind, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, n.UserID, n.Kind, n.Title, n.Body).Scan(&id)
	return id, err
}

// CreateForUsers inserts the same notification for each recipient in one
// round trip.
func (r *NotificationRepository) CreateForUsers(ctx context.Context, userIDs []int64, kind models.NotificationKind, title, body string) error {
	const query = `
		INSERT INTO notifications (user_id, kind, title, body, read, created_at)
		SELECT unnest($1::bigint[]), $2, $3, $4, FALSE, NOW()
	`
	_, err := r.pool.Exec(ctx, query, userIDs, kind, title, body)
	return err
}

func (r *NotificationRepository) ListUnread(ctx context.Context, userID int64) ([]models.Notification, error) {
	const query = `
		SELECT id, user_id, kind, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1 AND NOT read
		ORDER BY created_at DESC
	`
	return r.queryList(ctx, query, userID)
}

func (r *NotificationRepository) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Notification, error) {
	const query = `
		SELECT id, user_id, kind, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1 AND created_at > $2
		ORDER BY created_at DESC
	`
	return r.queryList(ctx, query, userID, since)
}

func (r *NotificationRepository) ListHistory(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	const query = `
		SELECT id, user_id, kind, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryList(ctx, query, userID, limit, offset)
}

func (r *NotificationRepository) queryList(ctx context.Context, query string, args ...any) ([]models.Notification, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`
	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead only touches rows owned by userID so one user cannot acknowledge
// another's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	const query = `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	const query = `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// DeleteReadBefore removes read notifications older than cutoff.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM notifications WHERE read AND created_at < $1`
	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
