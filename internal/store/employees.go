package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// EmployeeRepository reads staff rows from Postgres.
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository initializes a repo backed by pgx.
func NewEmployeeRepository(db DB) *EmployeeRepository {
	if db == nil {
		panic("store: db required")
	}
	return &EmployeeRepository{db: db}
}

var _ EmployeeStore = (*EmployeeRepository)(nil)

// ListActiveByBusiness returns bookable employees ordered by name.
func (r *EmployeeRepository) ListActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]Employee, error) {
	query := `
		SELECT id, business_id, name, active, created_at
		FROM employees
		WHERE business_id = $1 AND active
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("store: select employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.Name, &e.Active, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate employees: %w", err)
	}
	return employees, nil
}
