package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Record(ctx context.Context, entry models.AuditEntry) error {
	const query = `
		INSERT INTO activity_logs (user_id, action, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		entry.UserID,
		entry.Action,
		entry.Details,
		entry.IPAddress,
		entry.UserAgent,
	)
	return err
}

func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	const query = `
		SELECT l.id, l.user_id, l.action, l.details, l.ip_address, l.user_agent, l.created_at,
		       COALESCE(u.username, '')
		FROM activity_logs l
		LEFT JOIN users u ON u.id = l.user_id
		ORDER BY l.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
			&entry.Username,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *AuditRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM activity_logs`
	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
