package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AppointmentRepository stores appointments in Postgres.
type AppointmentRepository struct {
	db DB
}

// NewAppointmentRepository initializes a repo backed by pgx.
func NewAppointmentRepository(db DB) *AppointmentRepository {
	if db == nil {
		panic("store: db required")
	}
	return &AppointmentRepository{db: db}
}

var _ AppointmentStore = (*AppointmentRepository)(nil)

const appointmentColumns = `id, business_id, customer_id, employee_id, starts_at, ends_at, status, created_at`

// GetByID fetches one appointment.
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`
	var a Appointment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.BusinessID, &a.CustomerID, &a.EmployeeID,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: select appointment: %w", err)
	}
	return &a, nil
}

// ListByCustomer returns the customer's appointments, soonest first.
func (r *AppointmentRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE customer_id = $1
		ORDER BY starts_at
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("store: select appointments by customer: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListByEmployeeBetween returns the employee's non-cancelled appointments
// overlapping the [from, to) window, soonest first.
func (r *AppointmentRepository) ListByEmployeeBetween(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE employee_id = $1
		  AND status <> 'cancelled'
		  AND starts_at < $3
		  AND ends_at > $2
		ORDER BY starts_at
	`
	rows, err := r.db.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("store: select appointments by employee: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// Create inserts a confirmed appointment. The insert is guarded by an
// anti-overlap predicate so a slot that filled between availability check
// and commit surfaces as ErrSlotConflict rather than a double booking.
func (r *AppointmentRepository) Create(ctx context.Context, input CreateAppointmentInput) (*Appointment, error) {
	if !input.EndsAt.After(input.StartsAt) {
		return nil, errors.New("store: appointment end must be after start")
	}

	id := uuid.New()
	query := `
		INSERT INTO appointments (id, business_id, customer_id, employee_id, starts_at, ends_at, status)
		SELECT $1, $2, $3, $4, $5, $6, 'confirmed'
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE employee_id = $4
			  AND status <> 'cancelled'
			  AND starts_at < $6
			  AND ends_at > $5
		)
		RETURNING created_at
	`
	appt := Appointment{
		ID:         id,
		BusinessID: input.BusinessID,
		CustomerID: input.CustomerID,
		EmployeeID: input.EmployeeID,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		Status:     AppointmentConfirmed,
	}
	err := r.db.QueryRow(ctx, query,
		id, input.BusinessID, input.CustomerID, input.EmployeeID, input.StartsAt, input.EndsAt,
	).Scan(&appt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("store: insert appointment: %w", err)
	}
	return &appt, nil
}

// Cancel marks an appointment cancelled and returns the updated row.
func (r *AppointmentRepository) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelled'
		WHERE id = $1 AND status <> 'cancelled'
		RETURNING ` + appointmentColumns + `
	`
	var a Appointment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.BusinessID, &a.CustomerID, &a.EmployeeID,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: cancel appointment: %w", err)
	}
	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var appointments []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.BusinessID, &a.CustomerID, &a.EmployeeID,
			&a.StartsAt, &a.EndsAt, &a.Status, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate appointments: %w", err)
	}
	return appointments, nil
}
