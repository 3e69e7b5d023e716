package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

const (
	liveStatsKey = "stats:live"
	liveStatsTTL = 30 * time.Second
)

// StatsService aggregates survey figures for the dashboards. The live summary
// is cached in redis for a short window because the dashboard polls it.
type StatsService struct {
	stats StatsStore
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewStatsService(stats StatsStore, rdb *redis.Client, log zerolog.Logger) *StatsService {
	return &StatsService{stats: stats, rdb: rdb, log: log}
}

func (s *StatsService) Summary(ctx context.Context) (models.SatisfactionStats, error) {
	return s.stats.Overall(ctx)
}

func (s *StatsService) SummaryBetween(ctx context.Context, from, to time.Time) (models.SatisfactionStats, error) {
	return s.stats.OverallBetween(ctx, from, to)
}

func (s *StatsService) ByDepartment(ctx context.Context) ([]models.DepartmentStats, error) {
	return s.stats.ByDepartment(ctx)
}

func (s *StatsService) ByReason(ctx context.Context) ([]models.ReasonStats, error) {
	return s.stats.ByReason(ctx)
}

func (s *StatsService) Monthly(ctx context.Context, months int) ([]models.MonthlyStats, error) {
	if months <= 0 || months > 36 {
		months = 6
	}
	return s.stats.Monthly(ctx, months)
}

// Dashboard assembles the full dashboard payload in one call.
func (s *StatsService) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	overall, err := s.stats.Overall(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	byDepartment, err := s.stats.ByDepartment(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	byReason, err := s.stats.ByReason(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	monthly, err := s.stats.Monthly(ctx, 6)
	if err != nil {
		return models.DashboardStats{}, err
	}

	return models.DashboardStats{
		Overall:     overall,
		Monthly:     monthly,
		Departments: byDepartment,
		Reasons:     byReason,
		GeneratedAt: time.Now(),
	}, nil
}

// Live returns the overall figures with a 30 second redis cache in front.
// Cache failures degrade to a direct query.
func (s *StatsService) Live(ctx context.Context) (models.SatisfactionStats, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, liveStatsKey).Bytes()
		if err == nil {
			var cached models.SatisfactionStats
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("live stats cache read failed")
		}
	}

	stats, err := s.stats.Overall(ctx)
	if err != nil {
		return models.SatisfactionStats{}, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, liveStatsKey, raw, liveStatsTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("live stats cache write failed")
			}
		}
	}
	return stats, nil
}
