package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmartinel/turnosms/internal/store"
	"github.com/dmartinel/turnosms/pkg/logging"
)

// DefaultLeadTime is how long before the appointment the reminder goes out.
const DefaultLeadTime = 24 * time.Hour

// Scheduler enqueues reminder jobs when appointments are booked. It
// satisfies the dialogue engine's ReminderScheduler interface.
type Scheduler struct {
	queue     Queue
	customers customerLookup
	leadTime  time.Duration
	logger    *logging.Logger
	now       func() time.Time
}

// customerLookup resolves the phone to text the reminder to.
type customerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*store.Customer, error)
}

// NewScheduler builds a scheduler. A non-positive leadTime falls back to
// DefaultLeadTime.
func NewScheduler(queue Queue, customers customerLookup, leadTime time.Duration, logger *logging.Logger) *Scheduler {
	if queue == nil {
		panic("reminders: queue is required")
	}
	if customers == nil {
		panic("reminders: customer lookup is required")
	}
	if leadTime <= 0 {
		leadTime = DefaultLeadTime
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		queue:     queue,
		customers: customers,
		leadTime:  leadTime,
		logger:    logger,
		now:       time.Now,
	}
}

// Schedule enqueues one reminder for the appointment. Appointments closer
// than the lead time get no reminder; the booking confirmation already
// covers them.
func (s *Scheduler) Schedule(ctx context.Context, appt *store.Appointment) error {
	sendAt := appt.StartsAt.Add(-s.leadTime)
	if !sendAt.After(s.now()) {
		s.logger.Debug("appointment too soon for a reminder", "appointment_id", appt.ID)
		return nil
	}

	customer, err := s.customers.GetByID(ctx, appt.CustomerID)
	if err != nil {
		return fmt.Errorf("reminders: resolving customer: %w", err)
	}

	body, err := encodeJob(job{
		AppointmentID: appt.ID,
		Phone:         customer.Phone,
		SendAt:        sendAt,
	})
	if err != nil {
		return err
	}
	if err := s.queue.Send(ctx, body, sendAt.Sub(s.now())); err != nil {
		return err
	}
	s.logger.Info("reminder scheduled", "appointment_id", appt.ID, "send_at", sendAt)
	return nil
}

// CancelForAppointment is intentionally queue-free: jobs for cancelled
// appointments are dropped by the worker at send time, after it re-reads
// the appointment status.
func (s *Scheduler) CancelForAppointment(_ context.Context, appointmentID uuid.UUID) error {
	s.logger.Debug("reminder will be skipped at send time", "appointment_id", appointmentID)
	return nil
}
