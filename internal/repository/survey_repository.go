package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

var ErrSurveyNotFound = errors.New("survey not found")

type SurveyRepository struct {
	pool *pgxpool.Pool
}

func NewSurveyRepository(pool *pgxpool.Pool) *SurveyRepository {
	return &SurveyRepository{pool: pool}
}

const surveyColumns = `
	s.id, s.visited_at, s.last_name, s.first_name, s.phone, s.email,
	s.visit_reason, s.satisfaction, s.department_id, d.name,
	s.comments, s.recommendations, s.ip_address, s.user_agent, s.created_at
`

func scanSurvey(row pgx.Row) (models.Survey, error) {
	var survey models.Survey
	if err := row.Scan(
		&survey.ID,
		&survey.VisitedAt,
		&survey.LastName,
		&survey.FirstName,
		&survey.Phone,
		&survey.Email,
		&survey.VisitReason,
		&survey.Satisfaction,
		&survey.DepartmentID,
		&survey.DepartmentName,
		&survey.Comments,
		&survey.Recommendations,
		&survey.IPAddress,
		&survey.UserAgent,
		&survey.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Survey{}, ErrSurveyNotFound
		}
		return models.Survey{}, err
	}
	return survey, nil
}

func (r *SurveyRepository) Create(ctx context.Context, survey models.Survey) (int64, error) {
	const query = `
		INSERT INTO surveys (
			visited_at, last_name, first_name, phone, email, visit_reason,
			satisfaction, department_id, comments, recommendations,
			ip_address, user_agent, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW()
		)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		survey.VisitedAt,
		survey.LastName,
		survey.FirstName,
		survey.Phone,
		survey.Email,
		survey.VisitReason,
		survey.Satisfaction,
		survey.DepartmentID,
		survey.Comments,
		survey.Recommendations,
		survey.IPAddress,
		survey.UserAgent,
	).Scan(&id)
	return id, err
}

func (r *SurveyRepository) GetByID(ctx context.Context, id int64) (models.Survey, error) {
	const query = `
		SELECT ` + surveyColumns + `
		FROM surveys s
		JOIN departments d ON d.id = s.department_id
		WHERE s.id = $1
	`
	return scanSurvey(r.pool.QueryRow(ctx, query, id))
}

// filterClauses builds the WHERE fragment for a filter, appending bind values
// to args. Filters compose with AND.
func filterClauses(filter models.SurveyFilter, args *[]any) []string {
	var clauses []string
	bind := func(value any) string {
		*args = append(*args, value)
		return fmt.Sprintf("$%d", len(*args))
	}

	if filter.From != nil {
		clauses = append(clauses, "s.visited_at >= "+bind(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "s.visited_at <= "+bind(*filter.To))
	}
	if filter.Satisfaction != "" {
		clauses = append(clauses, "s.satisfaction = "+bind(filter.Satisfaction))
	}
	if filter.VisitReason != "" {
		clauses = append(clauses, "s.visit_reason = "+bind(filter.VisitReason))
	}
	if filter.DepartmentID != 0 {
		clauses = append(clauses, "s.department_id = "+bind(filter.DepartmentID))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		clauses = append(clauses, "(s.last_name ILIKE "+bind(pattern)+" OR s.first_name ILIKE "+bind(pattern)+")")
	}
	return clauses
}

func (r *SurveyRepository) List(ctx context.Context, filter models.SurveyFilter, limit, offset int) ([]models.Survey, error) {
	query := `
		SELECT ` + surveyColumns + `
		FROM surveys s
		JOIN departments d ON d.id = s.department_id
	`

	var args []any
	if clauses := filterClauses(filter, &args); len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY s.visited_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var surveys []models.Survey
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, survey)
	}
	return surveys, rows.Err()
}

func (r *SurveyRepository) Count(ctx context.Context, filter models.SurveyFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM surveys s`

	var args []any
	if clauses := filterClauses(filter, &args); len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SurveyRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM surveys WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSurveyNotFound
	}
	return nil
}
