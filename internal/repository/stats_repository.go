package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

const satisfactionAggregate = `
	COUNT(*),
	COUNT(*) FILTER (WHERE satisfaction = 'Satisfied'),
	COUNT(*) FILTER (WHERE satisfaction = 'Dissatisfied')
`

func rate(satisfied, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(satisfied) * 100 / float64(total)
}

func (r *StatsRepository) Overall(ctx context.Context) (models.SatisfactionStats, error) {
	const query = `SELECT ` + satisfactionAggregate + ` FROM surveys`

	var stats models.SatisfactionStats
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.Total, &stats.Satisfied, &stats.Dissatisfied); err != nil {
		return models.SatisfactionStats{}, err
	}
	stats.SatisfactionRate = rate(stats.Satisfied, stats.Total)
	return stats, nil
}

func (r *StatsRepository) OverallBetween(ctx context.Context, from, to time.Time) (models.SatisfactionStats, error) {
	const query = `SELECT ` + satisfactionAggregate + ` FROM surveys WHERE visited_at BETWEEN $1 AND $2`

	var stats models.SatisfactionStats
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&stats.Total, &stats.Satisfied, &stats.Dissatisfied); err != nil {
		return models.SatisfactionStats{}, err
	}
	stats.SatisfactionRate = rate(stats.Satisfied, stats.Total)
	return stats, nil
}

func (r *StatsRepository) ByDepartment(ctx context.Context) ([]models.DepartmentStats, error) {
	const query = `
		SELECT d.id, d.name, ` + satisfactionAggregate + `
		FROM departments d
		JOIN surveys ON surveys.department_id = d.id
		WHERE d.active
		GROUP BY d.id, d.name
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DepartmentStats
	for rows.Next() {
		var s models.DepartmentStats
		if err := rows.Scan(&s.DepartmentID, &s.DepartmentName, &s.Total, &s.Satisfied, &s.Dissatisfied); err != nil {
			return nil, err
		}
		s.SatisfactionRate = rate(s.Satisfied, s.Total)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StatsRepository) ByReason(ctx context.Context) ([]models.ReasonStats, error) {
	const query = `
		SELECT visit_reason, ` + satisfactionAggregate + `
		FROM surveys
		GROUP BY visit_reason
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ReasonStats
	for rows.Next() {
		var s models.ReasonStats
		if err := rows.Scan(&s.VisitReason, &s.Total, &s.Satisfied, &s.Dissatisfied); err != nil {
			return nil, err
		}
		s.SatisfactionRate = rate(s.Satisfied, s.Total)
		out = append(out, s)
	}
	return out, rows.Err()
}

// monthWindowStart returns the first day of the oldest month in a window of
// `months` calendar months ending at the month of now.
func monthWindowStart(now time.Time, months int) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -(months - 1), 0)
}

// Monthly returns per-month aggregates over the last `months` calendar
// months, the current partial month included, newest first.
func (r *StatsRepository) Monthly(ctx context.Context, months int) ([]models.MonthlyStats, error) {
	const query = `
		SELECT
			EXTRACT(YEAR FROM date_trunc('month', visited_at))::int,
			EXTRACT(MONTH FROM date_trunc('month', visited_at))::int,
			` + satisfactionAggregate + `
		FROM surveys
		WHERE visited_at >= $1
		GROUP BY date_trunc('month', visited_at)
		ORDER BY date_trunc('month', visited_at) DESC
	`

	rows, err := r.pool.Query(ctx, query, monthWindowStart(time.Now(), months))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MonthlyStats
	for rows.Next() {
		var s models.MonthlyStats
		if err := rows.Scan(&s.Year, &s.Month, &s.Total, &s.Satisfied, &s.Dissatisfied); err != nil {
			return nil, err
		}
		s.SatisfactionRate = rate(s.Satisfied, s.Total)
		out = append(out, s)
	}
	return out, rows.Err()
}
