package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

const (
	unreadCountTTL      = time.Minute
	notificationMaxAge  = 30 * 24 * time.Hour
	defaultHistoryLimit = 50
)

func unreadCountKey(userID int64) string {
	return fmt.Sprintf("notif:unread:%d", userID)
}

// NotificationService serves the dashboard notification feed. The unread
// counter is cached in redis and invalidated on every write because the
// frontend polls it aggressively.
type NotificationService struct {
	store NotificationStore
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewNotificationService(store NotificationStore, rdb *redis.Client, log zerolog.Logger) *NotificationService {
	return &NotificationService{store: store, rdb: rdb, log: log}
}

func (s *NotificationService) invalidateCount(ctx context.Context, userID int64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("unread count invalidation failed")
	}
}

func (s *NotificationService) Unread(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.store.ListUnread(ctx, userID)
}

// UnreadCount serves the polled counter, redis first.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, unreadCountKey(userID)).Result()
		if err == nil {
			if count, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
				return count, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("unread count cache read failed")
		}
	}

	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, unreadCountKey(userID), count, unreadCountTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("unread count cache write failed")
		}
	}
	return count, nil
}

// Updates returns notifications created after `since`, for incremental polling.
func (s *NotificationService) Updates(ctx context.Context, userID int64, since time.Time) ([]models.Notification, error) {
	return s.store.ListSince(ctx, userID, since)
}

func (s *NotificationService) History(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListHistory(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	if err := s.store.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateCount(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.invalidateCount(ctx, userID)
	return n, nil
}

type NotifyInput struct {
	UserIDs []int64
	Title   string
	Body    string
}

// Notify creates a manual notification for the given users.
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) error {
	if len(input.UserIDs) == 0 {
		return validationFailed("at least one recipient is required", nil)
	}
	if input.Title == "" {
		return validationFailed("title is required", nil)
	}
	if err := s.store.CreateForUsers(ctx, input.UserIDs, models.NotificationManual, input.Title, input.Body); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	for _, uid := range input.UserIDs {
		s.invalidateCount(ctx, uid)
	}
	return nil
}

// Cleanup removes read notifications older than 30 days. Invoked daily by the
// scheduler and exposed as an admin action.
func (s *NotificationService) Cleanup(ctx context.Context) (int64, error) {
	return s.store.DeleteReadBefore(ctx, time.Now().Add(-notificationMaxAge))
}
