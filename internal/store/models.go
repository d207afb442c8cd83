package store

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of a booked appointment.
type AppointmentStatus string

const (
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Business is a tenant: one SMS number maps to one business.
type Business struct {
	ID          uuid.UUID
	Name        string
	PhoneNumber string
	Timezone    string
	CreatedAt   time.Time
}

// Customer is an end user identified by their phone number within a business.
type Customer struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	Phone      string
	Name       string
	CreatedAt  time.Time
}

// Employee is a bookable staff member.
type Employee struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	Name       string
	Active     bool
	CreatedAt  time.Time
}

// AvailabilityRule is a recurring weekly window during which an employee
// accepts appointments. Weekday follows time.Weekday (0 = Sunday).
// Start and End are minutes-of-day wall clock values ("09:00" -> 540).
type AvailabilityRule struct {
	ID         uuid.UUID
	EmployeeID uuid.UUID
	Weekday    time.Weekday
	StartMin   int
	EndMin     int
}

// Appointment is a confirmed or cancelled booking.
type Appointment struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	CustomerID uuid.UUID
	EmployeeID uuid.UUID
	StartsAt   time.Time
	EndsAt     time.Time
	Status     AppointmentStatus
	CreatedAt  time.Time
}

// Upcoming reports whether the appointment is active and in the future.
func (a Appointment) Upcoming(now time.Time) bool {
	return a.Status != AppointmentCancelled && a.StartsAt.After(now)
}
