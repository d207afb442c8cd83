package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilityRepository reads weekly availability windows from Postgres.
type AvailabilityRepository struct {
	db DB
}

// NewAvailabilityRepository initializes a repo backed by pgx.
func NewAvailabilityRepository(db DB) *AvailabilityRepository {
	if db == nil {
		panic("store: db required")
	}
	return &AvailabilityRepository{db: db}
}

var _ AvailabilityStore = (*AvailabilityRepository)(nil)

// ListByEmployee returns every weekly window for the employee, ordered by
// weekday then start time. Overlapping windows are returned as stored; the
// availability engine deliberately does not merge them.
func (r *AvailabilityRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]AvailabilityRule, error) {
	query := `
		SELECT id, employee_id, weekday, start_min, end_min
		FROM availability_rules
		WHERE employee_id = $1
		ORDER BY weekday, start_min
	`
	rows, err := r.db.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("store: select availability: %w", err)
	}
	defer rows.Close()

	var rules []AvailabilityRule
	for rows.Next() {
		var rule AvailabilityRule
		var weekday int
		if err := rows.Scan(&rule.ID, &rule.EmployeeID, &weekday, &rule.StartMin, &rule.EndMin); err != nil {
			return nil, fmt.Errorf("store: scan availability: %w", err)
		}
		rule.Weekday = time.Weekday(weekday)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate availability: %w", err)
	}
	return rules, nil
}
