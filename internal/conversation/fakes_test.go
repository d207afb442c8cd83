package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmartinel/turnosms/internal/store"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, body)
	return nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeCustomers struct {
	byPhone map[string]*store.Customer
	err     error
}

func (f *fakeCustomers) GetByPhone(_ context.Context, businessID uuid.UUID, phone string) (*store.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byPhone[phone]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeCustomers) Create(_ context.Context, businessID uuid.UUID, phone, name string) (*store.Customer, error) {
	c := &store.Customer{ID: uuid.New(), BusinessID: businessID, Phone: phone, Name: name}
	f.byPhone[phone] = c
	return c, nil
}

type fakeEmployees struct {
	list []store.Employee
	err  error
}

func (f *fakeEmployees) ListActiveByBusiness(_ context.Context, businessID uuid.UUID) ([]store.Employee, error) {
	return f.list, f.err
}

type fakeAvailability struct {
	rules []store.AvailabilityRule
}

func (f *fakeAvailability) ListByEmployee(_ context.Context, employeeID uuid.UUID) ([]store.AvailabilityRule, error) {
	var out []store.AvailabilityRule
	for _, r := range f.rules {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAppointments struct {
	mu    sync.Mutex
	appts []store.Appointment
}

func (f *fakeAppointments) GetByID(_ context.Context, id uuid.UUID) (*store.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.ID == id {
			copied := a
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAppointments) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]store.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Appointment
	for _, a := range f.appts {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) ListByEmployeeBetween(_ context.Context, employeeID uuid.UUID, from, to time.Time) ([]store.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Appointment
	for _, a := range f.appts {
		if a.EmployeeID == employeeID && a.StartsAt.Before(to) && a.EndsAt.After(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) Create(_ context.Context, input store.CreateAppointmentInput) (*store.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.EmployeeID == input.EmployeeID && a.Status != store.AppointmentCancelled &&
			input.StartsAt.Before(a.EndsAt) && input.EndsAt.After(a.StartsAt) {
			return nil, store.ErrSlotConflict
		}
	}
	appt := store.Appointment{
		ID:         uuid.New(),
		BusinessID: input.BusinessID,
		CustomerID: input.CustomerID,
		EmployeeID: input.EmployeeID,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		Status:     store.AppointmentConfirmed,
	}
	f.appts = append(f.appts, appt)
	return &appt, nil
}

func (f *fakeAppointments) Cancel(_ context.Context, id uuid.UUID) (*store.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts[i].Status = store.AppointmentCancelled
			a := f.appts[i]
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

type fakeReminders struct {
	scheduled []uuid.UUID
	cancelled []uuid.UUID
}

func (f *fakeReminders) Schedule(_ context.Context, appt *store.Appointment) error {
	f.scheduled = append(f.scheduled, appt.ID)
	return nil
}

func (f *fakeReminders) CancelForAppointment(_ context.Context, appointmentID uuid.UUID) error {
	f.cancelled = append(f.cancelled, appointmentID)
	return nil
}
