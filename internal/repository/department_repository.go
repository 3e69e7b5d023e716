package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

var ErrDepartmentNotFound = errors.New("department not found")

type DepartmentRepository struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepository(pool *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

func (r *DepartmentRepository) ListActive(ctx context.Context) ([]models.Department, error) {
	const query = `
		SELECT id, name, description, active, created_at
		FROM departments
		WHERE active
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var dept models.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.Active, &dept.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}

// GetActiveByName resolves a department by its exact name. Survey intake uses
// it to map the submitted department label to a row.
func (r *DepartmentRepository) GetActiveByName(ctx context.Context, name string) (models.Department, error) {
	const query = `
		SELECT id, name, description, active, created_at
		FROM departments
		WHERE name = $1 AND active
	`
	row := r.pool.QueryRow(ctx, query, name)
	var dept models.Department
	if err := row.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.Active, &dept.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Department{}, ErrDepartmentNotFound
		}
		return models.Department{}, err
	}
	return dept, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, dept models.Department) (int64, error) {
	const query = `
		INSERT INTO departments (name, description, active, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, dept.Name, dept.Description, dept.Active).Scan(&id)
	return id, err
}

func (r *DepartmentRepository) Update(ctx context.Context, dept models.Department) error {
	const query = `
		UPDATE departments
		SET name = $2, description = $3, active = $4
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, dept.ID, dept.Name, dept.Description, dept.Active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}
