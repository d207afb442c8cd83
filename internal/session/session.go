package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// State is the conversation state machine position for one phone number.
type State string

const (
	StateInitial                State = "initial"
	StateAskingName             State = "asking_name"
	StateIntentDetected         State = "intent_detected"
	StateCollectingData         State = "collecting_data"
	StateConfirming             State = "confirming"
	StateCancelling             State = "cancelling"
	StateConfirmingCancellation State = "confirming_cancellation"
	StateViewing                State = "viewing"
	StateCompleted              State = "completed"
	StateCancelled              State = "cancelled"
)

// Step is a booking field the dialogue still has to collect.
type Step string

const (
	StepEmployee Step = "employee"
	StepDate     Step = "date"
	StepTime     Step = "time"
)

// DefaultTTL is how long a session survives without activity.
const DefaultTTL = 30 * time.Minute

// EmployeeRef caches an employee shown to the user so later turns can
// resolve index or name selections without re-querying.
type EmployeeRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AppointmentRef caches an appointment listed during a cancellation or
// viewing dialogue.
type AppointmentRef struct {
	ID           uuid.UUID `json:"id"`
	EmployeeName string    `json:"employee_name"`
	StartsAt     time.Time `json:"starts_at"`
}

// Data is the accumulated conversation data bag.
type Data struct {
	BusinessID   uuid.UUID `json:"business_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name,omitempty"`

	// Booking fields being assembled. Date is "2006-01-02", Time "15:04".
	EmployeeID   uuid.UUID `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	Date         string    `json:"date,omitempty"`
	Time         string    `json:"time,omitempty"`

	// PendingSteps is the ordered queue of fields still missing. It only
	// shrinks from the front and is never reordered mid-flow.
	PendingSteps []Step `json:"pending_steps,omitempty"`

	// CancelTarget is the appointment picked during a cancellation dialogue.
	CancelTarget uuid.UUID `json:"cancel_target"`

	Employees    []EmployeeRef    `json:"employees,omitempty"`
	Appointments []AppointmentRef `json:"appointments,omitempty"`

	// ShownSlots are the "15:04" start times last presented to the user,
	// in display order, so a bare numeral can select one.
	ShownSlots []string `json:"shown_slots,omitempty"`
}

// Session is the per-phone conversational state. At most one exists per
// phone at any time; handlers always write changes back through the Store.
type Session struct {
	Phone        string    `json:"phone"`
	State        State     `json:"state"`
	Data         Data      `json:"data"`
	LastActivity time.Time `json:"last_activity"`
}

// BookingDate parses the accumulated date field as midnight in loc. Only
// valid once the date collection step has been satisfied.
func (s *Session) BookingDate(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s.Data.Date, loc)
}

// Store owns session lifetime. Get returns nil for absent or expired
// sessions and purges expired entries as a side effect (sweep-on-read is
// part of the contract, not an implementation detail).
type Store interface {
	Get(ctx context.Context, phone string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, phone string) error
	All(ctx context.Context) ([]Session, error)
}
