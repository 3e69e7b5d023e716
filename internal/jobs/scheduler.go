package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SessionPurger removes expired session rows.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// NotificationCleaner removes old read notifications.
type NotificationCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Scheduler runs the periodic maintenance jobs: an hourly session purge and a
// daily notification cleanup.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionPurger
	notifs   NotificationCleaner
	log      zerolog.Logger
}

func NewScheduler(sessions SessionPurger, notifs NotificationCleaner, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		sessions: sessions,
		notifs:   notifs,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.purgeSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.cleanupNotifications); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.sessions.PurgeExpiredSessions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session purge failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("expired sessions purged")
	}
}

func (s *Scheduler) cleanupNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.notifs.Cleanup(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("notification cleanup failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("old notifications removed")
	}
}
