package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrSlotConflict is returned when an appointment insert would overlap
	// an existing non-cancelled appointment for the same employee.
	ErrSlotConflict = errors.New("store: slot conflict")
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock
// satisfies it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CustomerStore resolves and registers customers by phone.
type CustomerStore interface {
	GetByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*Customer, error)
	Create(ctx context.Context, businessID uuid.UUID, phone, name string) (*Customer, error)
}

// EmployeeStore lists bookable staff.
type EmployeeStore interface {
	ListActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]Employee, error)
}

// AvailabilityStore lists the weekly windows for an employee.
type AvailabilityStore interface {
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]AvailabilityRule, error)
}

// AppointmentStore creates, cancels and queries appointments.
type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Appointment, error)
	ListByEmployeeBetween(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]Appointment, error)
	Create(ctx context.Context, input CreateAppointmentInput) (*Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error)
}

// BusinessStore resolves tenants by their SMS number.
type BusinessStore interface {
	GetByPhoneNumber(ctx context.Context, phone string) (*Business, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Business, error)
}

// CreateAppointmentInput carries everything needed to insert a confirmed booking.
type CreateAppointmentInput struct {
	BusinessID uuid.UUID
	CustomerID uuid.UUID
	EmployeeID uuid.UUID
	StartsAt   time.Time
	EndsAt     time.Time
}
